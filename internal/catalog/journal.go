package catalog

import "context"

// Journal is told about every mutation the backend accepted.
type Journal interface {
	Mutated(ctx context.Context, entity, action string, id int64)
}

// JournalFunc adapts a function to Journal.
type JournalFunc func(ctx context.Context, entity, action string, id int64)

func (f JournalFunc) Mutated(ctx context.Context, entity, action string, id int64) {
	f(ctx, entity, action, id)
}

// Journals fans one mutation out to several journals.
type Journals []Journal

func (js Journals) Mutated(ctx context.Context, entity, action string, id int64) {
	for _, j := range js {
		if j != nil {
			j.Mutated(ctx, entity, action, id)
		}
	}
}

type nopJournal struct{}

func (nopJournal) Mutated(context.Context, string, string, int64) {}

func orNop(j Journal) Journal {
	if j == nil {
		return nopJournal{}
	}
	return j
}
