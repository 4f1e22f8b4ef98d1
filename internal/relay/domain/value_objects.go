package domain

type ID string

func (vo ID) String() string {
	return string(vo)
}

type EventKind string

const (
	EventStart EventKind = "start"
	EventStop  EventKind = "stop"
)

func (k EventKind) Valid() bool {
	return k == EventStart || k == EventStop
}

func (k EventKind) String() string {
	return string(k)
}
