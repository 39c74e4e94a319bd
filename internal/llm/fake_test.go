package llm

import (
	"context"
)

type fakeCompleter struct {
	reply string
	err   error
	last  Request
	calls int
}

func (f *fakeCompleter) Complete(_ context.Context, req Request) (string, error) {
	f.calls++
	f.last = req
	return f.reply, f.err
}
