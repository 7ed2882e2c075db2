package scoring

import (
	realtime "Pixelhop/models/realtime"
	"Pixelhop/services/store"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
)

// Config holds the finish-score weights and constants
type Config struct {
	FruitWeight     float64 // points per fruit
	TimeWeight      float64 // points per second under the bonus window
	EnemyWeight     float64 // points per enemy killed
	KnockbackWeight float64 // points per knockback under the penalty cap
	BonusWindow     float64 // seconds
	PenaltyCap      int
}

func DefaultConfig() Config {
	return Config{
		FruitWeight:     2.0,
		TimeWeight:      1.5,
		EnemyWeight:     1.0,
		KnockbackWeight: 0.5,
		BonusWindow:     120,
		PenaltyCap:      10,
	}
}

// CalculateFinalScore computes the weighted finish score:
// fruit*Wf + max(0, bonusWindow-time)*Wt + enemies*We + max(0, penaltyCap-knockbacks)*Wk
func (c Config) CalculateFinalScore(fruitCollected int, completionTime float64, enemiesKilled, knockBacks int) float64 {
	timeBonus := c.BonusWindow - completionTime
	if timeBonus < 0 {
		timeBonus = 0
	}
	knockbackBonus := float64(c.PenaltyCap - knockBacks)
	if knockbackBonus < 0 {
		knockbackBonus = 0
	}
	return float64(fruitCollected)*c.FruitWeight +
		timeBonus*c.TimeWeight +
		float64(enemiesKilled)*c.EnemyWeight +
		knockbackBonus*c.KnockbackWeight
}

// Scorer accumulates the finish results of one match. Both clients run the
// same read-modify-write sequence against the shared gameStats document, so
// the last writer's winner comparison is authoritative; when both finish
// within the same synchronization window the result is best-effort and not
// required to be symmetric across machines.
type Scorer struct {
	store  store.Store
	roomID string
	config Config

	mu       sync.Mutex
	finished map[string]bool // local already-finished guard per player id
}

func NewScorer(s store.Store, roomID string, config Config) *Scorer {
	return &Scorer{
		store:    s,
		roomID:   roomID,
		config:   config,
		finished: make(map[string]bool),
	}
}

// RecordFinish computes the player's final score, claims or updates its
// slot in the shared gameStats document and, when both slots report
// finished, determines the winner. A second call for the same local player
// is a no-op.
func (sc *Scorer) RecordFinish(ctx context.Context, playerID, playerName string, fruitCollected int, completionTime float64, enemiesKilled, knockBacks int) error {
	sc.mu.Lock()
	if sc.finished[playerID] {
		sc.mu.Unlock()
		log.Printf("[SCORE] Duplicate finish from %s in room %s, ignoring", playerID, sc.roomID)
		return nil
	}
	sc.mu.Unlock()

	var stats realtime.MultiplayerGameStats
	found, err := sc.store.Get(ctx, store.GameStatsPath(sc.roomID), &stats)
	if err != nil {
		return fmt.Errorf("error reading game stats for room %s: %v", sc.roomID, err)
	}
	if !found {
		stats.GameStatus = realtime.GameStatusPlaying
	}

	slot := stats.SlotFor(playerID)
	if slot == nil {
		return fmt.Errorf("no free stats slot for player %s in room %s", playerID, sc.roomID)
	}
	slot.PlayerID = playerID
	slot.PlayerName = playerName
	slot.FruitCollected = fruitCollected
	slot.CompletionTime = completionTime
	slot.EnemiesKilled = enemiesKilled
	slot.KnockBacks = knockBacks
	slot.TotalScore = sc.config.CalculateFinalScore(fruitCollected, completionTime, enemiesKilled, knockBacks)
	slot.HasFinished = true

	if stats.Player1.HasFinished && stats.Player2.HasFinished {
		determineWinner(&stats)
	}

	if err := sc.store.Set(ctx, store.GameStatsPath(sc.roomID), stats); err != nil {
		return fmt.Errorf("error writing game stats for room %s: %v", sc.roomID, err)
	}

	// Mark only after the write landed; a failed attempt stays retryable
	sc.mu.Lock()
	sc.finished[playerID] = true
	sc.mu.Unlock()

	log.Printf("[SCORE] Player %s finished room %s with %.1f points", playerID, sc.roomID, slot.TotalScore)
	return nil
}

// determineWinner compares the two finished slots. Higher score wins; an
// exact tie gets the explicit tie marker, never a random tiebreak.
func determineWinner(stats *realtime.MultiplayerGameStats) {
	switch {
	case stats.Player1.TotalScore > stats.Player2.TotalScore:
		stats.WinnerID = stats.Player1.PlayerID
		stats.WinnerName = stats.Player1.PlayerName
	case stats.Player2.TotalScore > stats.Player1.TotalScore:
		stats.WinnerID = stats.Player2.PlayerID
		stats.WinnerName = stats.Player2.PlayerName
	default:
		stats.WinnerID = ""
		stats.WinnerName = realtime.WinnerNameTie
	}
	stats.GameStatus = realtime.GameStatusFinished
}

// RestartSlot reinitializes the calling player's slot only, clearing the
// local finished guard with it. The other slot is left untouched.
func (sc *Scorer) RestartSlot(ctx context.Context, playerID string) error {
	sc.mu.Lock()
	delete(sc.finished, playerID)
	sc.mu.Unlock()

	var stats realtime.MultiplayerGameStats
	found, err := sc.store.Get(ctx, store.GameStatsPath(sc.roomID), &stats)
	if err != nil {
		return fmt.Errorf("error reading game stats for room %s: %v", sc.roomID, err)
	}
	if !found {
		return nil
	}

	switch playerID {
	case stats.Player1.PlayerID:
		stats.Player1 = realtime.MultiplayerPlayerStats{PlayerID: playerID, PlayerName: stats.Player1.PlayerName}
	case stats.Player2.PlayerID:
		stats.Player2 = realtime.MultiplayerPlayerStats{PlayerID: playerID, PlayerName: stats.Player2.PlayerName}
	default:
		return nil
	}
	stats.GameStatus = realtime.GameStatusPlaying
	stats.WinnerID = ""
	stats.WinnerName = ""

	if err := sc.store.Set(ctx, store.GameStatsPath(sc.roomID), stats); err != nil {
		return fmt.Errorf("error restarting slot for room %s: %v", sc.roomID, err)
	}
	return nil
}

// ResultWatch observes a room's shared gameStats document and reports each
// transition into the finished state.
type ResultWatch struct {
	sub       store.Subscription
	closeOnce sync.Once
	done      chan struct{}
}

// WatchResult fires onResult with the final stats every time the document
// moves from playing to finished. Both participants watch the same
// document, so each one learns the outcome no matter who finished last; a
// restarted and re-finished match reports again, repeated finished writes
// do not.
func WatchResult(ctx context.Context, s store.Store, roomID string, onResult func(stats realtime.MultiplayerGameStats)) (*ResultWatch, error) {
	sub, err := s.Watch(ctx, store.GameStatsPath(roomID))
	if err != nil {
		return nil, err
	}
	w := &ResultWatch{sub: sub, done: make(chan struct{})}
	go func() {
		defer close(w.done)
		finished := false
		for ev := range sub.Events() {
			if ev.Data == nil {
				finished = false
				continue
			}
			var stats realtime.MultiplayerGameStats
			if err := json.Unmarshal(ev.Data, &stats); err != nil {
				log.Printf("[SCORE-WARN] garbled game stats for room %s: %v", roomID, err)
				continue
			}
			if stats.GameStatus != realtime.GameStatusFinished {
				finished = false
				continue
			}
			if !finished && onResult != nil {
				onResult(stats)
			}
			finished = true
		}
	}()
	return w, nil
}

func (w *ResultWatch) Close() {
	w.closeOnce.Do(func() {
		w.sub.Close()
		<-w.done
	})
}

// Stats reads the current shared gameStats document.
func (sc *Scorer) Stats(ctx context.Context) (realtime.MultiplayerGameStats, bool, error) {
	var stats realtime.MultiplayerGameStats
	found, err := sc.store.Get(ctx, store.GameStatsPath(sc.roomID), &stats)
	return stats, found, err
}
