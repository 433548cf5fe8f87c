// Package stats reports the progress of a running PBF read.
package stats

import (
	"time"

	"github.com/osmex/osmex/log"
)

type counter struct {
	coords        int64
	nodes         int64
	ways          int64
	relations     int64
	lastReport    time.Time
	lastCoords    int64
	lastNodes     int64
	lastWays      int64
	lastRelations int64
}

// Statistics collects element counts from the reader goroutines and
// logs them once a second.
type Statistics struct {
	coords    chan int
	nodes     chan int
	ways      chan int
	relations chan int
	done      chan chan struct{}
}

func (s *Statistics) AddCoords(n int)    { s.coords <- n }
func (s *Statistics) AddNodes(n int)     { s.nodes <- n }
func (s *Statistics) AddWays(n int)      { s.ways <- n }
func (s *Statistics) AddRelations(n int) { s.relations <- n }

// Stop logs the final counts and stops the reporter.
func (s *Statistics) Stop() {
	wait := make(chan struct{})
	s.done <- wait
	<-wait
}

func NewReporter() *Statistics {
	c := counter{lastReport: time.Now()}
	s := &Statistics{
		coords:    make(chan int),
		nodes:     make(chan int),
		ways:      make(chan int),
		relations: make(chan int),
		done:      make(chan chan struct{}),
	}

	go func() {
		tick := time.NewTicker(time.Second)
		defer tick.Stop()
		for {
			select {
			case n := <-s.coords:
				c.coords += int64(n)
			case n := <-s.nodes:
				c.nodes += int64(n)
			case n := <-s.ways:
				c.ways += int64(n)
			case n := <-s.relations:
				c.relations += int64(n)
			case wait := <-s.done:
				c.log(true)
				close(wait)
				return
			case <-tick.C:
				c.log(false)
			}
		}
	}()
	return s
}

func (c *counter) log(final bool) {
	if final {
		log.Printf("read %d coords, %d nodes, %d ways, %d relations",
			c.coords, c.nodes, c.ways, c.relations)
		return
	}
	dur := time.Since(c.lastReport)
	log.Printf("[progress] coords: %d/s (%d) nodes: %d/s (%d) ways: %d/s (%d) relations: %d/s (%d)",
		perSecond(c.coords-c.lastCoords, dur), c.coords,
		perSecond(c.nodes-c.lastNodes, dur), c.nodes,
		perSecond(c.ways-c.lastWays, dur), c.ways,
		perSecond(c.relations-c.lastRelations, dur), c.relations,
	)
	c.lastReport = time.Now()
	c.lastCoords = c.coords
	c.lastNodes = c.nodes
	c.lastWays = c.ways
	c.lastRelations = c.relations
}

func perSecond(n int64, dur time.Duration) int64 {
	if dur <= 0 {
		return 0
	}
	return int64(float64(n) / dur.Seconds())
}
