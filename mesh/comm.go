package mesh

import "github.com/notargets/gostokes/utils"

// Comm is the collective-reduction boundary of the worker group owning the
// mesh partitions. The transport behind it is opaque to the assembly core.
type Comm interface {
	Rank() int
	Size() int
	AllReduceSum(local float64) float64
}

// SelfComm is the single-rank group.
type SelfComm struct{}

func (SelfComm) Rank() int                          { return 0 }
func (SelfComm) Size() int                          { return 1 }
func (SelfComm) AllReduceSum(local float64) float64 { return local }

// GroupComm binds one rank of an in-process worker group to the Comm
// contract. All ranks of the group must enter each collective.
type GroupComm struct {
	WG     *utils.WorkerGroup
	MyRank int
}

func NewGroupComm(wg *utils.WorkerGroup, myRank int) GroupComm {
	return GroupComm{WG: wg, MyRank: myRank}
}

func (g GroupComm) Rank() int { return g.MyRank }
func (g GroupComm) Size() int { return g.WG.NP }
func (g GroupComm) AllReduceSum(local float64) float64 {
	return g.WG.AllReduceSum(g.MyRank, local)
}
