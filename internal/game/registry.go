package game

import (
    "math/rand"
    "sync"
)

// Registry maps identifiers to live players and rooms. It holds no game
// policy; callers decide when entities are registered or evicted.
type Registry struct {
    mu      sync.RWMutex
    players map[string]*Player
    rooms   map[string]*Room
}

func NewRegistry() *Registry {
    return &Registry{
        players: make(map[string]*Player),
        rooms:   make(map[string]*Room),
    }
}

func (r *Registry) SetPlayer(p *Player) {
    r.mu.Lock()
    defer r.mu.Unlock()
    r.players[p.ID] = p
}

func (r *Registry) Player(id string) (*Player, bool) {
    r.mu.RLock()
    defer r.mu.RUnlock()
    p, ok := r.players[id]
    return p, ok
}

func (r *Registry) RemovePlayer(id string) bool {
    r.mu.Lock()
    defer r.mu.Unlock()
    _, ok := r.players[id]
    delete(r.players, id)
    return ok
}

func (r *Registry) SetRoom(room *Room) {
    r.mu.Lock()
    defer r.mu.Unlock()
    r.rooms[room.ID] = room
}

// AddRoom registers room unless its id is already taken.
func (r *Registry) AddRoom(room *Room) bool {
    r.mu.Lock()
    defer r.mu.Unlock()
    if r.rooms[room.ID] != nil {
        return false
    }
    r.rooms[room.ID] = room
    return true
}

func (r *Registry) Room(id string) (*Room, bool) {
    r.mu.RLock()
    defer r.mu.RUnlock()
    room, ok := r.rooms[id]
    return room, ok
}

func (r *Registry) RemoveRoom(id string) bool {
    r.mu.Lock()
    defer r.mu.Unlock()
    _, ok := r.rooms[id]
    delete(r.rooms, id)
    return ok
}

// Counts reports the number of registered players and rooms.
func (r *Registry) Counts() (players, rooms int) {
    r.mu.RLock()
    defer r.mu.RUnlock()
    return len(r.players), len(r.rooms)
}

const roomCodeLength = 8

func randomCode(n int) string {
    letters := []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
    b := make([]rune, n)
    for i := range b {
        b[i] = letters[rand.Intn(len(letters))]
    }
    return string(b)
}
