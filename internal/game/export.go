package game

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

type Standing struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
}

// Result is the outcome of one finished game.
type Result struct {
	RoomID    string
	MatchID   string
	Rounds    int
	EndedAt   time.Time
	Standings []Standing
}

// result builds the ranked standings. mu must be held.
func (c *core) result(room *Room) Result {
	res := Result{
		RoomID:  room.ID,
		MatchID: room.matchID,
		Rounds:  room.settings.TotalRounds,
		EndedAt: c.now().UTC(),
	}
	for _, id := range room.players {
		name := "Unknown"
		if p, ok := c.reg.Player(id); ok {
			name = p.Name
		}
		res.Standings = append(res.Standings, Standing{PlayerID: id, Name: name, Score: room.scores[id]})
	}
	sort.SliceStable(res.Standings, func(i, j int) bool {
		return res.Standings[i].Score > res.Standings[j].Score
	})
	return res
}

// ExportResult appends a finished game to a text file.
func ExportResult(res Result, filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	fileExists := false
	if _, err := os.Stat(filename); err == nil {
		fileExists = true
	}

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var sb strings.Builder
	if fileExists {
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("Room %s - Match %s\n", res.RoomID, res.MatchID))
	sb.WriteString(fmt.Sprintf("Ended: %s after %d round(s)\n", res.EndedAt.Format("2006-01-02 15:04:05"), res.Rounds))
	sb.WriteString(strings.Repeat("-", 40) + "\n")
	for i, s := range res.Standings {
		sb.WriteString(fmt.Sprintf("%d. %s: %d points\n", i+1, s.Name, s.Score))
	}

	if _, err := file.WriteString(sb.String()); err != nil {
		return fmt.Errorf("failed to write to file: %w", err)
	}
	return nil
}
