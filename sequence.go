package fmsim

import (
	"fmt"
	"os"

	"github.com/go-kit/kit/log"
)

// FlightSequence is an ordered composition of flight parts (segments or
// nested sequences). Its ComputeFrom threads the end point of each member
// into the next one, keeps the timeline mass-consistent when a member injects
// an absolute mass, and concatenates everything into one continuous path.
type FlightSequence struct {
	name        string
	members     []FlightPart
	memberNames []string
	target      *FlightPoint
	logger      log.Logger

	// Derived state of the last ComputeFrom call. Overwritten by the next
	// call: callers needing the previous result must grab it first.
	lastPath                  FlightPath
	consumedBeforeInputWeight float64
}

// NewFlightSequence returns an empty sequence with the given name.
func NewFlightSequence(name string, logger log.Logger) *FlightSequence {
	if logger == nil {
		logger = log.NewLogfmtLogger(log.NewSyncWriter(os.Stdout))
	}
	return &FlightSequence{name: name, logger: log.With(logger, "subsys", "sequence")}
}

// Add appends a member under the given name and returns the sequence for
// chaining. The member's qualified name is assigned at compute time, so
// sequences may be freely nested after construction.
func (fs *FlightSequence) Add(name string, part FlightPart) *FlightSequence {
	fs.members = append(fs.members, part)
	fs.memberNames = append(fs.memberNames, name)
	return fs
}

func (fs *FlightSequence) parts() []FlightPart { return fs.members }

func (fs *FlightSequence) partName() string { return fs.name }

func (fs *FlightSequence) setPartName(name string) { fs.name = name }

func (fs *FlightSequence) setTarget(target FlightPoint) { fs.target = &target }

// LastPath returns the path produced by the last ComputeFrom call.
func (fs *FlightSequence) LastPath() FlightPath { return fs.lastPath }

// ConsumedMassBeforeInputWeight returns the fuel mass consumed by members
// preceding the first member which declared an absolute target mass, as of
// the last ComputeFrom call.
func (fs *FlightSequence) ConsumedMassBeforeInputWeight() float64 {
	return fs.consumedBeforeInputWeight
}

// ComputeFrom implements the FlightPart interface.
func (fs *FlightSequence) ComputeFrom(start FlightPoint) (FlightPath, error) {
	if len(fs.members) == 0 {
		return nil, fmt.Errorf("%w: sequence %s has no members", ErrIncompleteFlightPoint, fs.name)
	}
	// Work on a copy so that member segments never mutate caller state.
	cur := start
	// An external target is delegated to the last member before recursion.
	if fs.target != nil {
		if tg, ok := fs.members[len(fs.members)-1].(targetable); ok {
			tg.setTarget(*fs.target)
		}
	}
	fs.consumedBeforeInputWeight = 0
	massSeen := false
	var result FlightPath
	for i, member := range fs.members {
		if n, ok := member.(named); ok {
			n.setPartName(fs.name + ":" + fs.memberNames[i])
		}
		// Whether the member declares an absolute target mass must be
		// captured before the call: computing may resolve relative targets
		// into absolute ones in place.
		declaresMass := false
		if tg, ok := member.(targeted); ok {
			t := tg.targetPoint()
			declaresMass = isSet(t.Mass) && !t.Relative.Has(FieldMass)
		}
		sub, err := member.ComputeFrom(cur)
		if err != nil {
			return result, fmt.Errorf("sequence %s, member %s: %w", fs.name, fs.memberNames[i], err)
		}
		if len(sub) == 0 {
			return result, fmt.Errorf("sequence %s, member %s returned no points", fs.name, fs.memberNames[i])
		}
		if nested, ok := member.(*FlightSequence); ok {
			fs.consumedBeforeInputWeight += nested.ConsumedMassBeforeInputWeight()
		}
		if declaresMass {
			// The member pinned an absolute mass: shift every point already
			// accumulated by the resulting offset. Their fuel consumption is
			// independent of absolute mass, so a constant shift keeps it
			// while making the timeline consistent.
			if isSet(cur.Mass) {
				offset := sub.First().Mass - cur.Mass
				for j := range result {
					result[j].Mass += offset
				}
			}
			if !massSeen {
				massSeen = true
				fs.consumedBeforeInputWeight = sub.Last().ConsumedFuel
			}
		}
		if len(result) == 0 {
			result = append(result, sub...)
		} else {
			// The member's first point duplicates our last one: repair any
			// still-unset fields of ours from it, then drop it.
			result[len(result)-1].repairFrom(sub.First())
			result = append(result, sub[1:]...)
		}
		cur = result[len(result)-1]
	}
	fs.lastPath = result
	return result, nil
}
