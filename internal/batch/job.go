package batch

import (
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/coursekit/roundex/internal/rounds"
	"github.com/coursekit/roundex/internal/share"
)

// State is a job's position in the pipeline. Done and Failed are terminal.
type State string

const (
	StatePending  State = "pending"
	StateFetching State = "fetching"
	StateParsing  State = "parsing"
	StateBuilding State = "building"
	StateDone     State = "done"
	StateFailed   State = "failed"
)

// Job binds one input link to its outcome. A job is owned by the runner
// goroutine processing it; nothing else touches it until the batch settles.
type Job struct {
	ID     uuid.UUID
	Index  int
	Link   share.Link
	Name   string
	State  State
	Reason string
	Rounds []rounds.Row
	File   *excelize.File
}

func (j *Job) fail(reason string) {
	j.State = StateFailed
	j.Reason = reason
}
