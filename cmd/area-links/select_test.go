package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/cristianoliveira/area-links/internal/geometry"
	"github.com/cristianoliveira/area-links/internal/history"
	"github.com/cristianoliveira/area-links/internal/orchestrator"
	"github.com/cristianoliveira/area-links/internal/page"
	"github.com/cristianoliveira/area-links/internal/protocol"
	"github.com/cristianoliveira/area-links/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoLinksHTML = `<title>Links</title><p><a href="https://a.test/">Alpha</a> <a href="https://b.test/">Beta</a></p><p><a href="https://c.test/">Gamma</a></p>`

type htmlLoader map[string]string

func (l htmlLoader) Load(_ context.Context, rawURL string, width int) (*page.Document, error) {
	return page.ParseString(l[rawURL], rawURL, width)
}

// useStore makes every runtime of the test share one in-memory store.
func useStore(t *testing.T) storage.Store {
	t.Helper()
	st := storage.NewMemory()
	orig := newStore
	newStore = func(string) (storage.Store, error) { return st, nil }
	t.Cleanup(func() { newStore = orig })
	return st
}

func fakePages(opts runtimeOptions) runtimeOptions {
	opts.loader = htmlLoader{"https://links.test/": twoLinksHTML}
	return opts
}

func TestHeadlessSelectOpensWholePage(t *testing.T) {
	st := useStore(t)
	ctx := context.Background()

	res, err := headlessSelector{options: fakePages}.Select(ctx, SelectRequest{
		URL:   "https://links.test/",
		Mode:  protocol.ModeOpen,
		Width: 40,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.test/", "https://b.test/", "https://c.test/"}, res.Opened)
	assert.Empty(t, res.Alerts)

	saved, err := st.Load(ctx, history.KindLinks)
	require.NoError(t, err)
	assert.ElementsMatch(t, res.Opened, saved)
}

func TestHeadlessSelectBox(t *testing.T) {
	useStore(t)

	from, to := geometry.Point{X: 0, Y: 0}, geometry.Point{X: 12, Y: 0}
	res, err := headlessSelector{options: fakePages}.Select(context.Background(), SelectRequest{
		URL:   "https://links.test/",
		Mode:  protocol.ModeOpen,
		Width: 40,
		From:  &from,
		To:    &to,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.test/", "https://b.test/"}, res.Opened)
}

func TestHeadlessSelectCopyPrints(t *testing.T) {
	st := useStore(t)
	var out bytes.Buffer

	res, err := headlessSelector{options: fakePages}.Select(context.Background(), SelectRequest{
		URL:   "https://links.test/",
		Mode:  protocol.ModeCopy,
		Width: 40,
		Print: true,
		Out:   &out,
	})
	require.NoError(t, err)
	assert.Empty(t, res.Opened)
	assert.Equal(t, "https://a.test/\nhttps://b.test/\nhttps://c.test/\n", out.String())

	copied, err := st.Load(context.Background(), history.KindCopies)
	require.NoError(t, err)
	assert.Empty(t, copied, "copy history is off by default")
}

func TestHeadlessSelectRejectsNonWebPages(t *testing.T) {
	useStore(t)

	_, err := headlessSelector{options: fakePages}.Select(context.Background(), SelectRequest{
		URL:   "about:blank",
		Mode:  protocol.ModeOpen,
		Width: 40,
	})
	assert.ErrorIs(t, err, orchestrator.ErrNotSelectable)
}

type failingSaves struct {
	storage.Store
	err error
}

func (f failingSaves) Save(context.Context, history.Kind, []string) error { return f.err }

func TestHeadlessSelectReportsOpenFailure(t *testing.T) {
	boom := errors.New("disk full")
	orig := newStore
	newStore = func(string) (storage.Store, error) { return failingSaves{Store: storage.NewMemory(), err: boom}, nil }
	t.Cleanup(func() { newStore = orig })

	_, err := headlessSelector{options: fakePages}.Select(context.Background(), SelectRequest{
		URL:   "https://links.test/",
		Mode:  protocol.ModeOpen,
		Width: 40,
	})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), string(protocol.TypeOpenLinks))
}

type recordingSelector struct {
	req SelectRequest
	res SelectResult
	err error
}

func (r *recordingSelector) Select(_ context.Context, req SelectRequest) (SelectResult, error) {
	r.req = req
	return r.res, r.err
}

func TestSelectCmdParsesBox(t *testing.T) {
	client := &recordingSelector{res: SelectResult{Opened: []string{"https://a.test/"}, Alerts: []string{"careful"}}}
	c := NewSelectCmd(client)
	var out, errOut bytes.Buffer
	c.SetOut(&out)
	c.SetErr(&errOut)
	c.SetArgs([]string{"example.test", "--copy", "--from", "1,2", "--to", " 30, 4", "--width", "60"})

	require.NoError(t, c.Execute())
	assert.Equal(t, "https://example.test", client.req.URL)
	assert.Equal(t, protocol.ModeCopy, client.req.Mode)
	assert.Equal(t, 60, client.req.Width)
	require.NotNil(t, client.req.From)
	assert.Equal(t, geometry.Point{X: 1, Y: 2}, *client.req.From)
	assert.Equal(t, geometry.Point{X: 30, Y: 4}, *client.req.To)
	assert.Equal(t, "https://a.test/\n", out.String())
	assert.Equal(t, "careful\n", errOut.String())
}

func TestSelectCmdErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "from without to", args: []string{"example.test", "--from", "1,2"}},
		{name: "bad cell", args: []string{"example.test", "--from", "1", "--to", "2,3"}},
		{name: "negative row", args: []string{"example.test", "--from", "1,-2", "--to", "2,3"}},
		{name: "no url", args: []string{}},
		{name: "unknown format variable", args: []string{"example.test", "--format", "{{title}}"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewSelectCmd(&recordingSelector{})
			c.SetOut(&bytes.Buffer{})
			c.SetErr(&bytes.Buffer{})
			c.SetArgs(tt.args)
			assert.Error(t, c.Execute())
		})
	}
}

func TestSelectCmdFormatsOpenedLinks(t *testing.T) {
	client := &recordingSelector{res: SelectResult{Opened: []string{"https://a.test/", "https://b.test/p"}}}
	c := NewSelectCmd(client)
	var out bytes.Buffer
	c.SetOut(&out)
	c.SetErr(&bytes.Buffer{})
	c.SetArgs([]string{"example.test", "-f", "{{index}} {{host}}{{path}}"})

	require.NoError(t, c.Execute())
	assert.Equal(t, "1 a.test/\n2 b.test/p\n", out.String())
}

func TestSelectCmdReturnsClientError(t *testing.T) {
	boom := errors.New("boom")
	c := NewSelectCmd(&recordingSelector{err: boom})
	c.SetOut(&bytes.Buffer{})
	c.SetErr(&bytes.Buffer{})
	c.SetArgs([]string{"example.test"})
	assert.ErrorIs(t, c.Execute(), boom)
}

func TestNewSelectCmdPanicsWithoutClient(t *testing.T) {
	assert.Panics(t, func() { NewSelectCmd(nil) })
}
