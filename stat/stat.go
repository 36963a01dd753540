package stat

import (
	"fmt"
	"sort"
	"sync"
)

// TypeStat counts the tasks of one job type by status.
type TypeStat struct {
	Name       string   `json:"name"`
	Queued     *Counter `json:"queued"`
	InProgress *Counter `json:"in_progress"`
	Completed  *Counter `json:"completed"`
}

func NewTypeStat(name string) *TypeStat {
	var stat = new(TypeStat)
	stat.Name = name
	stat.Queued = NewCounter(0)
	stat.InProgress = NewCounter(0)
	stat.Completed = NewCounter(0)
	return stat
}

// Submitted records a new queued task.
func (stat *TypeStat) Submitted() {
	stat.Queued.Incr()
}

// Started moves one task from queued to in progress.
func (stat *TypeStat) Started() {
	stat.Queued.Decr()
	stat.InProgress.Incr()
}

// Finished moves one task from in progress to completed.
func (stat *TypeStat) Finished() {
	stat.InProgress.Decr()
	stat.Completed.Incr()
}

func (stat TypeStat) String() string {
	return fmt.Sprintf("%s,%s,%s,%s", stat.Name, stat.Queued, stat.InProgress, stat.Completed)
}

// Stats groups TypeStat by job type name.
type Stats struct {
	stats  map[string]*TypeStat
	locker *sync.Mutex
}

func NewStats(names ...string) *Stats {
	var s = &Stats{
		stats:  make(map[string]*TypeStat),
		locker: new(sync.Mutex),
	}
	for _, name := range names {
		s.stats[name] = NewTypeStat(name)
	}
	return s
}

// Get returns the stat of name, creating it on first use.
func (s *Stats) Get(name string) *TypeStat {
	defer s.locker.Unlock()
	s.locker.Lock()
	stat, ok := s.stats[name]
	if !ok {
		stat = NewTypeStat(name)
		s.stats[name] = stat
	}
	return stat
}

// All returns every stat sorted by name.
func (s *Stats) All() []*TypeStat {
	defer s.locker.Unlock()
	s.locker.Lock()
	var all = make([]*TypeStat, 0, len(s.stats))
	for _, stat := range s.stats {
		all = append(all, stat)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Name < all[j].Name
	})
	return all
}
