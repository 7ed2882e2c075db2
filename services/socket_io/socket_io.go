package socket_io

import (
	"Pixelhop/services/socket_io/handlers"
	socketio_types "Pixelhop/services/socket_io/types"
	socketio_utils "Pixelhop/services/socket_io/utils"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/gorm"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/engine.io/v2/log"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io/v2/socket"
)

type MySocketServer socketio_types.SocketServer

// Start wires the socket.io server into the gin router and registers the
// session event handlers for every authenticated connection.
func (sio *MySocketServer) Start(router *gin.Engine, db *gorm.DB, svc *handlers.Services) {
	log.DEBUG = true
	c := socket.DefaultServerOptions()
	c.SetServeClient(true)
	// NOTE: higher ping interval and timeout to 1) reduce network load and 2) support slower networks
	c.SetPingInterval(5 * time.Second)
	c.SetPingTimeout(3 * time.Second)
	c.SetMaxHttpBufferSize(1000000)
	c.SetConnectTimeout(10 * time.Second)
	c.SetTransports(types.NewSet("polling", "websocket"))
	c.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})

	// KEY: initialize the maps, otherwise it panics
	sio.UserConnections = make(map[string]*socket.Socket)
	sio.Sessions = make(map[string]*socketio_types.PlayerSession)

	sio.Sio_server = socket.NewServer(nil, nil)
	sio.Sio_server.On("connection", func(clients ...interface{}) {
		client := clients[0].(*socket.Socket)

		// Check if the client is authenticated
		success, username, email := socketio_utils.VerifyUserConnection(client, db)
		if !success {
			return
		}

		// Add connection to map
		(*socketio_types.SocketServer)(sio).AddConnection(username, client)

		fmt.Println("An individual just connected!: ", username, email)

		sioServer := (*socketio_types.SocketServer)(sio)

		// Lobby lifecycle
		client.On("request_create_room", handlers.HandleCreateRoom(svc, client, username, sioServer))
		client.On("request_join_room", handlers.HandleJoinRoom(svc, client, username, sioServer))
		client.On("toggle_ready", handlers.HandleToggleReady(svc, client, username, sioServer))
		client.On("leave_room", handlers.HandleLeaveRoom(svc, client, username, sioServer))
		client.On("start_game", handlers.HandleStartGame(svc, client, username, sioServer))

		// Invitations
		client.On("send_invitation", handlers.HandleSendInvitation(svc, client, username, sioServer))
		client.On("accept_invitation", handlers.HandleAcceptInvitation(svc, client, username, sioServer))
		client.On("decline_invitation", handlers.HandleDeclineInvitation(svc, client, username, sioServer))

		// In-match replication and results
		client.On("position_update", handlers.HandlePositionUpdate(svc, client, username, sioServer))
		client.On("level_finished", handlers.HandleLevelFinished(svc, client, username, sioServer))
		client.On("level_restarted", handlers.HandleLevelRestarted(svc, client, username, sioServer))
		client.On("request_match_overview", handlers.HandleMatchOverview(svc, client, username, sioServer))
		client.On("submit_rating", handlers.HandleSubmitRating(svc, client, username, sioServer))

		// NOTE: will remove sio connection from map
		client.On("disconnecting", handlers.HandleDisconnecting(svc, client, username, sioServer))
	})

	router.POST("/socket.io/*f", gin.WrapH(sio.Sio_server.ServeHandler(c)))
	router.GET("/socket.io/*f", gin.WrapH(sio.Sio_server.ServeHandler(c)))

	SignalC := make(chan os.Signal, 1)

	signal.Notify(SignalC, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		for s := range SignalC {
			switch s {
			case syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT:
				sio.Sio_server.Close(nil)
				os.Exit(0)
			}
		}
	}()

	fmt.Println("Socket server started")
}
