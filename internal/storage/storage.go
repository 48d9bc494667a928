package storage

import "dlmmScope/internal/model"

// DecisionSink receives decision records produced by the CLI.
type DecisionSink interface {
	Append(records ...model.DecisionRecord) error
}
