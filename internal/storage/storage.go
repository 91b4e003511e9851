package storage

import (
	"encoding/json"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
)

// Storage keys
const (
	keyPreferences = "preferences"
	keyStats       = "stats"
)

// Preferences stores the settings of the console and arena drivers.
type Preferences struct {
	PlayerX    string        `json:"player_x"`
	PlayerO    string        `json:"player_o"`
	Rounds     int           `json:"rounds"`
	First      string        `json:"first"`
	Difficulty string        `json:"difficulty"`
	MoveTime   time.Duration `json:"move_time"`
	LogLevel   string        `json:"log_level"`
	LastPlayed time.Time     `json:"last_played"`
}

// DefaultPreferences returns default preferences: a human playing X first
// against the alpha-beta bot over ten rounds.
func DefaultPreferences() *Preferences {
	return &Preferences{
		PlayerX:    "human",
		PlayerO:    "minimax",
		Rounds:     10,
		First:      "x",
		Difficulty: "hard",
		MoveTime:   5 * time.Second,
		LogLevel:   "info",
		LastPlayed: time.Now(),
	}
}

// Record is the win/loss/draw tally of one strategy.
type Record struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Draws  int `json:"draws"`
}

// Games returns the number of games the strategy took part in.
func (r *Record) Games() int {
	return r.Wins + r.Losses + r.Draws
}

// MatchStats stores aggregate match statistics. Individual games are never kept.
type MatchStats struct {
	Games         int                `json:"games"`
	WinsX         int                `json:"wins_x"`
	WinsO         int                `json:"wins_o"`
	Draws         int                `json:"draws"`
	ByStrategy    map[string]*Record `json:"by_strategy"`
	TotalPlayTime time.Duration      `json:"total_play_time"`
}

// NewMatchStats returns empty match statistics
func NewMatchStats() *MatchStats {
	return &MatchStats{
		ByStrategy: make(map[string]*Record),
	}
}

// MatchResult is the outcome of one finished game.
type MatchResult struct {
	PlayerX  string
	PlayerO  string
	ScoreX   int
	ScoreO   int
	Duration time.Duration
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db *badger.DB
}

// NewStorage opens the database in the platform data directory.
func NewStorage() (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return OpenAt(dbDir)
}

// OpenAt opens the database in dir.
func OpenAt(dir string) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "opening database at %s", dir)
	}

	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SavePreferences saves preferences
func (s *Storage) SavePreferences(prefs *Preferences) error {
	prefs.LastPlayed = time.Now()

	data, err := json.Marshal(prefs)
	if err != nil {
		return errors.Wrap(err, "encoding preferences")
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPreferences), data)
	})
}

// LoadPreferences loads preferences, returns defaults if not found
func (s *Storage) LoadPreferences() (*Preferences, error) {
	prefs := DefaultPreferences()

	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, keyPreferences, prefs)
	})

	return prefs, errors.Wrap(err, "loading preferences")
}

// LoadStats loads match statistics, returns empty stats if not found
func (s *Storage) LoadStats() (*MatchStats, error) {
	stats := NewMatchStats()

	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, keyStats, stats)
	})
	if stats.ByStrategy == nil {
		stats.ByStrategy = make(map[string]*Record)
	}

	return stats, errors.Wrap(err, "loading stats")
}

// RecordMatch folds a finished game into the statistics in a single transaction.
func (s *Storage) RecordMatch(result MatchResult) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		stats := NewMatchStats()
		if err := getJSON(txn, keyStats, stats); err != nil {
			return err
		}
		if stats.ByStrategy == nil {
			stats.ByStrategy = make(map[string]*Record)
		}

		stats.apply(result)

		data, err := json.Marshal(stats)
		if err != nil {
			return err
		}
		return txn.Set([]byte(keyStats), data)
	})
	return errors.Wrap(err, "recording match")
}

// ResetStats discards all statistics.
func (s *Storage) ResetStats() error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyStats))
	})
	return errors.Wrap(err, "resetting stats")
}

func (stats *MatchStats) apply(result MatchResult) {
	stats.Games++
	stats.TotalPlayTime += result.Duration

	x := stats.record(result.PlayerX)
	o := stats.record(result.PlayerO)

	switch {
	case result.ScoreX > result.ScoreO:
		stats.WinsX++
		x.Wins++
		o.Losses++
	case result.ScoreO > result.ScoreX:
		stats.WinsO++
		o.Wins++
		x.Losses++
	default:
		stats.Draws++
		x.Draws++
		o.Draws++
	}
}

func (stats *MatchStats) record(name string) *Record {
	r, ok := stats.ByStrategy[name]
	if !ok {
		r = &Record{}
		stats.ByStrategy[name] = r
	}
	return r
}

// WinRate returns the share of games won by X as a percentage (0-100)
func (stats *MatchStats) WinRate() float64 {
	if stats.Games == 0 {
		return 0
	}
	return float64(stats.WinsX) / float64(stats.Games) * 100
}

// getJSON decodes the value under key into v, leaving v untouched if the key is missing.
func getJSON(txn *badger.Txn, key string, v any) error {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}
