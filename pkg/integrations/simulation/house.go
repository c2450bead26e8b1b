package simulation

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/openbob/openbob/pkg/window"
)

// Person is a member of the simulated household roster
type Person struct {
	Name        string
	Process     string
	Personality string
}

// Roster lists everyone who may live in or visit the house
var Roster = []Person{
	{"Mom", "parent.exe", "busy"},
	{"Dad", "parent.exe", "relaxed"},
	{"Sarah", "teenager.exe", "social"},
	{"Tommy", "kid.exe", "energetic"},
	{"Grandma", "elder.exe", "calm"},
	{"Uncle Joe", "visitor.exe", "chatty"},
	{"Aunt Linda", "visitor.exe", "helpful"},
	{"Best Friend Alex", "friend.exe", "fun"},
	{"Neighbor Bob", "neighbor.exe", "curious"},
}

// Activities per personality
var Activities = map[string][]string{
	"busy": {
		"Cooking dinner in the kitchen", "Doing laundry", "Cleaning the living room",
		"Working on laptop in home office", "Organizing the garage", "Paying bills at desk",
		"Meal prepping", "Vacuuming upstairs",
	},
	"relaxed": {
		"Watching TV in living room", "Reading newspaper on couch", "Napping on recliner",
		"Listening to music in den", "Having coffee in kitchen", "Working on puzzle",
		"Browsing phone on patio", "Grilling in backyard",
	},
	"social": {
		"Video chatting with friends", "Texting in bedroom", "Taking selfies",
		"Posting on social media", "Watching TikTok videos", "Listening to music and dancing",
		"Video calling boyfriend", "Shopping online",
	},
	"energetic": {
		"Playing video games", "Running around backyard", "Playing with dog",
		"Building with LEGO", "Jumping on trampoline", "Riding bike in driveway",
		"Playing basketball", "Making a mess in playroom",
	},
	"calm": {
		"Knitting on couch", "Watching cooking show", "Reading book in armchair",
		"Doing crossword puzzle", "Looking at photo albums", "Watering plants",
		"Baking cookies", "Having tea in garden",
	},
	"chatty": {
		"Telling stories in living room", "Making phone calls", "Chatting at kitchen table",
		"Sharing old photos", "Discussing sports", "Debating politics",
		"Laughing about old times", "Giving unsolicited advice",
	},
	"helpful": {
		"Helping with dishes", "Teaching recipe to Mom", "Fixing things around house",
		"Gardening in backyard", "Folding laundry", "Setting the table",
		"Giving parenting tips", "Organizing pantry",
	},
	"fun": {
		"Playing board games", "Telling jokes", "Playing cards",
		"Watching comedy show", "Planning weekend trip", "Playing music together",
		"Having pillow fight", "Making funny videos",
	},
	"curious": {
		"Peeking through window", "Asking about new car", "Checking out renovations",
		"Discussing neighborhood gossip", "Admiring the garden", "Asking to borrow tools",
		"Sharing HOA concerns", "Talking about weather",
	},
}

// MinPeople is how many people always stay in the house
const MinPeople = 2

// Per-poll chances of household changes
const (
	visitorChance = 0.02
	leaveChance   = 0.015
)

type resident struct {
	Person
	id       window.ID
	activity string
	boredom  float64
}

func (r *resident) record() window.Record {
	return window.Record{
		ID:      r.id,
		AppName: r.Process,
		Title:   fmt.Sprintf("%s - %s", r.Name, r.activity),
	}
}

// House simulates people doing activities, one window per person. Every
// random decision comes from a seeded source, so a seed fixes the sequence.
type House struct {
	mu        sync.Mutex
	rng       *rand.Rand
	people    []*resident
	ids       map[window.ID]bool
	focus     int
	focusLeft int
}

// NewHouse seeds a household. people outside [MinPeople, len(Roster)] picks
// a seeded count between 4 and len(Roster).
func NewHouse(seed int64, people int) *House {
	h := &House{
		rng: rand.New(rand.NewSource(seed)),
		ids: make(map[window.ID]bool),
	}

	if people < MinPeople || people > len(Roster) {
		people = 4 + h.rng.Intn(len(Roster)-3)
	}

	for _, idx := range h.rng.Perm(len(Roster))[:people] {
		h.people = append(h.people, h.newResident(Roster[idx]))
	}
	h.focusLeft = h.focusSpan()
	return h
}

func (h *House) newResident(p Person) *resident {
	var id window.ID
	for id == window.NoWindow || h.ids[id] {
		id = window.ID(10000 + h.rng.Intn(90000))
	}
	h.ids[id] = true

	r := &resident{Person: p, id: id, boredom: 0.3 + 0.4*h.rng.Float64()}
	r.activity = h.activityFor(p.Personality)
	return r
}

func (h *House) activityFor(personality string) string {
	list, ok := Activities[personality]
	if !ok {
		list = Activities["relaxed"]
	}
	return list[h.rng.Intn(len(list))]
}

// focusSpan is how many polls focus stays on one person
func (h *House) focusSpan() int {
	return 3 + h.rng.Intn(18)
}

func (h *House) step() {
	for _, r := range h.people {
		if h.rng.Float64() < r.boredom*0.1 {
			r.activity = h.activityFor(r.Personality)
		}
	}

	switch roll := h.rng.Float64(); {
	case roll < visitorChance:
		h.addVisitorLocked()
	case roll < visitorChance+leaveChance:
		h.removePersonLocked()
	}

	h.focusLeft--
	if h.focusLeft <= 0 {
		h.focus = h.rng.Intn(len(h.people))
		h.focusLeft = h.focusSpan()
	}
}

func (h *House) Name() string {
	return "simulation"
}

func (h *House) IsSupported() bool {
	return true
}

// EnumerateWindows advances the simulation by one poll
func (h *House) EnumerateWindows() ([]window.Record, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.step()

	out := make([]window.Record, 0, len(h.people))
	for _, r := range h.people {
		out = append(out, r.record())
	}
	return out, nil
}

func (h *House) FocusedWindow() (window.ID, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.people[h.focus].id, nil
}

// People returns how many people are in the house
func (h *House) People() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.people)
}

// AddVisitor brings in someone from the roster who is not present
func (h *House) AddVisitor() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.addVisitorLocked()
}

// RemovePerson sends someone home, keeping at least MinPeople
func (h *House) RemovePerson() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.removePersonLocked()
}

func (h *House) addVisitorLocked() (string, bool) {
	present := make(map[string]bool, len(h.people))
	for _, r := range h.people {
		present[r.Name] = true
	}

	var available []Person
	for _, p := range Roster {
		if !present[p.Name] {
			available = append(available, p)
		}
	}
	if len(available) == 0 {
		return "", false
	}

	r := h.newResident(available[h.rng.Intn(len(available))])
	h.people = append(h.people, r)
	return r.Name, true
}

func (h *House) removePersonLocked() (string, bool) {
	if len(h.people) <= MinPeople {
		return "", false
	}

	i := h.rng.Intn(len(h.people))
	gone := h.people[i]
	h.people = append(h.people[:i], h.people[i+1:]...)

	switch {
	case h.focus == i:
		h.focus = h.rng.Intn(len(h.people))
	case h.focus > i:
		h.focus--
	}
	return gone.Name, true
}

func (h *House) Close() error {
	return nil
}
