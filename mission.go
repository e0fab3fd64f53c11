package fmsim

import (
	"fmt"
	"math"
	"os"
	"strings"
	"sync"

	"github.com/go-kit/kit/log"
)

var wg sync.WaitGroup

/* Handles whole-mission computations. */

// Mission is the top level flight sequence: the full ordered set of phases
// and routes for one flight, with optional reserve fuel accounting and an
// optional total fuel objective solved on the first route's cruise distance.
type Mission struct {
	seq          *FlightSequence
	targetFuel   float64 // kg, NaN when no fuel objective
	fuelAccuracy float64 // kg
	reserveRatio float64
	reserveBase  string // route name; empty means first route found
	export       ExportConfig
	logger       log.Logger

	lastReserve float64
}

// NewMission returns an empty mission. If the export config is not useless,
// every computed point will be streamed to the configured CSV output.
func NewMission(name string, conf ExportConfig, logger log.Logger) *Mission {
	if logger == nil {
		logger = log.NewLogfmtLogger(log.NewSyncWriter(os.Stdout))
	}
	return &Mission{
		seq:          NewFlightSequence(name, logger),
		targetFuel:   math.NaN(),
		fuelAccuracy: fmsimConfig().fuelAccuracy,
		export:       conf,
		logger:       log.With(logger, "subsys", "mission", "mission", name),
	}
}

// Add appends a flight part under the given name.
func (m *Mission) Add(name string, part FlightPart) *Mission {
	m.seq.Add(name, part)
	return m
}

// SetTargetFuelConsumption sets a total fuel burn objective in kg. The first
// route's cruise distance is then solved so that the mission burns exactly
// this much, instead of matching that route's distance target.
func (m *Mission) SetTargetFuelConsumption(fuel float64) { m.targetFuel = fuel }

// SetFuelAccuracy overrides the fuel solver tolerance, in kg.
func (m *Mission) SetFuelAccuracy(accuracy float64) { m.fuelAccuracy = accuracy }

// SetReserve enables reserve fuel accounting: ratio times the fuel consumed
// over the named route (empty name: the first route found depth-first).
func (m *Mission) SetReserve(ratio float64, baseRoute string) {
	m.reserveRatio = ratio
	m.reserveBase = baseRoute
}

// ReserveFuel returns the reserve computed by the last ComputeFrom call.
func (m *Mission) ReserveFuel() float64 { return m.lastReserve }

// LastPath returns the path produced by the last ComputeFrom call.
func (m *Mission) LastPath() FlightPath { return m.seq.LastPath() }

// ConsumedMassBeforeInputWeight mirrors the underlying sequence.
func (m *Mission) ConsumedMassBeforeInputWeight() float64 {
	return m.seq.ConsumedMassBeforeInputWeight()
}

func (m *Mission) partName() string { return m.seq.name }

func (m *Mission) setPartName(name string) { m.seq.name = name }

func (m *Mission) parts() []FlightPart { return m.seq.parts() }

// findRoute walks the part tree depth-first and returns the first route, or
// the first one whose name matches when a name is given.
func findRoute(parts []FlightPart, name string) *RangedRoute {
	for _, p := range parts {
		if rr, ok := p.(*RangedRoute); ok {
			if name == "" || routeNameMatches(rr, name) {
				return rr
			}
			continue
		}
		if c, ok := p.(composite); ok {
			if rr := findRoute(c.parts(), name); rr != nil {
				return rr
			}
		}
	}
	return nil
}

func routeNameMatches(rr *RangedRoute, name string) bool {
	qual := rr.partName()
	return qual == name || strings.HasSuffix(qual, ":"+name)
}

// ComputeFrom implements the FlightPart interface.
func (m *Mission) ComputeFrom(start FlightPoint) (FlightPath, error) {
	m.logger.Log("level", "info", "status", "starting", "mass", start.Mass)
	var path FlightPath
	var err error
	if isSet(m.targetFuel) {
		path, err = m.computeWithFuelObjective(start)
	} else {
		path, err = m.seq.ComputeFrom(start)
	}
	if err != nil {
		return path, err
	}
	m.lastReserve = 0
	if m.reserveRatio > 0 {
		base := findRoute(m.seq.parts(), m.reserveBase)
		if base == nil {
			return path, fmt.Errorf("%w: no route %q for reserve fuel", ErrUnknownMissionElement, m.reserveBase)
		}
		m.lastReserve = m.reserveRatio * base.LastPath().FuelBurned()
	}
	m.logStatus(path)
	m.exportPath(path)
	return path, nil
}

// computeWithFuelObjective drives the first route's cruise distance so that
// the whole mission burns the target fuel. The route's own distance solving
// is disabled meanwhile: the cruise distance is owned by this solver.
func (m *Mission) computeWithFuelObjective(start FlightPoint) (FlightPath, error) {
	route := findRoute(m.seq.parts(), "")
	if route == nil {
		return nil, fmt.Errorf("%w: fuel objective needs at least one route", ErrUnknownMissionElement)
	}
	wasSolving := route.SolveDistance
	route.SolveDistance = false
	defer func() { route.SolveDistance = wasSolving }()

	eval := func(cruiseDist float64) (float64, error) {
		route.Cruise().SetTargetGroundDistance(cruiseDist)
		path, err := m.seq.ComputeFrom(start)
		if err != nil {
			return 0, err
		}
		return m.targetFuel - path.FuelBurned(), nil
	}
	root, err := secant(eval, 0.5*route.FlightDistance(), 0.25*route.FlightDistance(), m.fuelAccuracy, maxSecantIterations)
	if err != nil {
		return m.seq.LastPath(), fmt.Errorf("mission %s fuel solver: %w", m.seq.name, err)
	}
	m.logger.Log("level", "info", "status", "fuel converged",
		"cruise_distance", root, "fuel", m.seq.LastPath().FuelBurned())
	return m.seq.LastPath(), nil
}

func (m *Mission) logStatus(path FlightPath) {
	duration := path.Duration()
	durStr := fmt.Sprintf("%.0fs", duration)
	if duration > 3600 {
		durStr += fmt.Sprintf(" (~%.2fh)", duration/3600)
	}
	m.logger.Log("level", "notice", "status", "finished", "duration", durStr,
		"distance(m)", path.GroundDistance(), "fuel(kg)", path.FuelBurned(), "reserve(kg)", m.lastReserve)
	if path.Last().Mass < 0 {
		m.logger.Log("level", "critical", "status", "negative mass", "mass", path.Last().Mass)
	}
}

func (m *Mission) exportPath(path FlightPath) {
	if m.export.IsUseless() {
		return
	}
	ch := make(chan FlightPoint, 1000)
	wg.Add(1)
	go func() {
		defer wg.Done()
		StreamPath(m.export, ch)
	}()
	for _, fp := range path {
		ch <- fp
	}
	close(ch)
	wg.Wait() // Don't return until the file is fully written.
}
