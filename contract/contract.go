//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"github.com/Alex-SA1/Efficient-Study-Platform/domain"
	"github.com/Alex-SA1/Efficient-Study-Platform/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself; the supervisor recovers panics and restarts.
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker,
// used for logging and supervision without manual naming in the interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink is one live connection's receiving end. Consume must never
// block the caller beyond ctx: the fan-out path treats a full sink as a
// drop for that connection only.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IConnRegistry tracks which live connections are bound to which group.
type IConnRegistry interface {
	SinksFor(group domain.GroupID) []EventSink
	Subscribe(connID string, group domain.GroupID, sink EventSink)
	Unsubscribe(connID string, group domain.GroupID)
}
