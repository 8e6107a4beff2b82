package listview

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/tada/internal/api"
	"github.com/idilsaglam/tada/internal/api/apitest"
	"github.com/idilsaglam/tada/internal/model"
)

// fakeClient records calls and returns canned results.
type fakeClient struct {
	calls []string

	list   api.Result[[]model.Item]
	create api.Result[model.Item]
	update api.Result[model.Item]
	del    api.Result[model.DeleteResponse]

	lastCreate model.CreateRequest
	lastUpdate model.UpdateRequest
}

func (f *fakeClient) List(ctx context.Context) api.Result[[]model.Item] {
	f.calls = append(f.calls, "list")
	return f.list
}

func (f *fakeClient) Create(ctx context.Context, req model.CreateRequest) api.Result[model.Item] {
	f.calls = append(f.calls, "create")
	f.lastCreate = req
	return f.create
}

func (f *fakeClient) Update(ctx context.Context, id string, req model.UpdateRequest) api.Result[model.Item] {
	f.calls = append(f.calls, "update:"+id)
	f.lastUpdate = req
	return f.update
}

func (f *fakeClient) Delete(ctx context.Context, id string) api.Result[model.DeleteResponse] {
	f.calls = append(f.calls, "delete:"+id)
	return f.del
}

func sample() []model.Item {
	return []model.Item{
		{ID: "1", Text: "one", CreatedAt: "t0"},
		{ID: "2", Text: "two", Completed: true, CreatedAt: "t1"},
		{ID: "3", Text: "three", CreatedAt: "t2"},
	}
}

func TestNew_StartsLoading(t *testing.T) {
	s := New()
	assert.True(t, s.Loading)
	assert.Empty(t, s.Items)
	assert.Empty(t, s.Err)
}

func TestLoad(t *testing.T) {
	s := New()
	s.Err = "stale"
	f := &fakeClient{list: api.OK(sample())}

	s.Load(context.Background(), f)
	assert.False(t, s.Loading)
	assert.Empty(t, s.Err)
	assert.Equal(t, sample(), s.Items)
}

func TestLoad_FailureKeepsPreviousItems(t *testing.T) {
	s := New()
	s.Items = sample()
	f := &fakeClient{list: api.Fail[[]model.Item]("down")}

	s.Load(context.Background(), f)
	assert.False(t, s.Loading)
	assert.Equal(t, "down", s.Err)
	assert.Equal(t, sample(), s.Items)
}

func TestLoad_FirstFailureLeavesEmpty(t *testing.T) {
	s := New()
	s.Load(context.Background(), &fakeClient{list: api.Fail[[]model.Item]("down")})
	assert.Empty(t, s.Items)
	assert.True(t, s.Empty())
}

func TestAdd(t *testing.T) {
	s := New()
	s.ApplyLoad(api.OK(sample()))
	s.Err = "old error"
	s.Input = "  four  "
	created := model.Item{ID: "4", Text: "four", CreatedAt: "t3"}
	f := &fakeClient{create: api.OK(created)}

	sent := s.Add(context.Background(), f)
	assert.True(t, sent)
	assert.Equal(t, "four", f.lastCreate.Text)
	require.Len(t, s.Items, 4)
	assert.Equal(t, created, s.Items[3])
	assert.Empty(t, s.Input)
	assert.Empty(t, s.Err)
}

func TestAdd_BlankInputSendsNothing(t *testing.T) {
	for _, in := range []string{"", "   ", "\t\n"} {
		s := New()
		s.Input = in
		f := &fakeClient{}
		assert.False(t, s.Add(context.Background(), f))
		assert.Empty(t, f.calls)
		assert.Equal(t, in, s.Input)
	}
}

func TestAdd_FailurePreservesInput(t *testing.T) {
	s := New()
	s.ApplyLoad(api.OK(sample()))
	s.Input = "retry me"
	f := &fakeClient{create: api.Fail[model.Item]("HTTP error! status: 500")}

	s.Add(context.Background(), f)
	assert.Equal(t, "retry me", s.Input)
	assert.Equal(t, "HTTP error! status: 500", s.Err)
	assert.Equal(t, sample(), s.Items)
}

func TestToggle(t *testing.T) {
	tests := []struct {
		name string
		from bool
	}{
		{"pending to done", false},
		{"done to pending", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			items := sample()
			items[1].Completed = tt.from
			s.ApplyLoad(api.OK(items))

			server := items[1]
			server.Completed = !tt.from
			f := &fakeClient{update: api.OK(server)}

			s.Toggle(context.Background(), f, items[1])
			require.NotNil(t, f.lastUpdate.Completed)
			assert.Equal(t, !tt.from, *f.lastUpdate.Completed)
			assert.Nil(t, f.lastUpdate.Text)
			assert.Equal(t, []string{"update:2"}, f.calls)
			assert.Equal(t, server, s.Items[1])
			assert.Equal(t, "1", s.Items[0].ID)
			assert.Equal(t, "3", s.Items[2].ID)
		})
	}
}

func TestToggle_UsesServerCopy(t *testing.T) {
	s := New()
	s.ApplyLoad(api.OK(sample()))
	// The server is authoritative even when it disagrees with the request.
	server := model.Item{ID: "1", Text: "renamed elsewhere", Completed: false, CreatedAt: "t0"}
	f := &fakeClient{update: api.OK(server)}

	s.Toggle(context.Background(), f, s.Items[0])
	assert.Equal(t, server, s.Items[0])
}

func TestToggle_FailureNoOptimisticFlip(t *testing.T) {
	s := New()
	s.ApplyLoad(api.OK(sample()))
	f := &fakeClient{update: api.Fail[model.Item]("Todo not found")}

	s.Toggle(context.Background(), f, s.Items[0])
	assert.Equal(t, sample(), s.Items)
	assert.Equal(t, "Todo not found", s.Err)
}

func TestDelete(t *testing.T) {
	s := New()
	s.ApplyLoad(api.OK(sample()))
	s.Err = "old"
	f := &fakeClient{del: api.OK(model.DeleteResponse{Message: "ok"})}

	s.Delete(context.Background(), f, "2")
	assert.Len(t, s.Items, 2)
	_, found := s.Find("2")
	assert.False(t, found)
	assert.Empty(t, s.Err)
}

func TestDelete_Failure(t *testing.T) {
	s := New()
	s.ApplyLoad(api.OK(sample()))
	f := &fakeClient{del: api.Fail[model.DeleteResponse]("Todo not found")}

	s.Delete(context.Background(), f, "9")
	assert.Equal(t, []string{"delete:9"}, f.calls)
	assert.Equal(t, sample(), s.Items)
	assert.Equal(t, "Todo not found", s.Err)
}

func TestRename(t *testing.T) {
	s := New()
	s.ApplyLoad(api.OK(sample()))
	server := model.Item{ID: "3", Text: "THREE", CreatedAt: "t2"}
	f := &fakeClient{update: api.OK(server)}

	assert.True(t, s.Rename(context.Background(), f, "3", "  THREE "))
	require.NotNil(t, f.lastUpdate.Text)
	assert.Equal(t, "THREE", *f.lastUpdate.Text)
	assert.Nil(t, f.lastUpdate.Completed)
	assert.Equal(t, server, s.Items[2])
}

func TestRename_BlankSendsNothing(t *testing.T) {
	s := New()
	s.ApplyLoad(api.OK(sample()))
	f := &fakeClient{}
	assert.False(t, s.Rename(context.Background(), f, "1", "  "))
	assert.Empty(t, f.calls)
}

func TestRename_Failure(t *testing.T) {
	s := New()
	s.ApplyLoad(api.OK(sample()))
	f := &fakeClient{update: api.Fail[model.Item]("Todo text cannot be empty")}
	s.Rename(context.Background(), f, "1", "x")
	assert.Equal(t, sample(), s.Items)
	assert.Equal(t, "Todo text cannot be empty", s.Err)
}

func TestLastCompletionWins(t *testing.T) {
	s := New()
	s.ApplyLoad(api.OK(sample()))

	first := model.Item{ID: "1", Text: "one", Completed: true, CreatedAt: "t0"}
	second := model.Item{ID: "1", Text: "one", Completed: false, CreatedAt: "t0"}
	s.ApplyUpdate("1", api.OK(first))
	s.ApplyUpdate("1", api.OK(second))
	assert.Equal(t, second, s.Items[0])
}

func TestStatsAndAt(t *testing.T) {
	s := New()
	s.ApplyLoad(api.OK(sample()))

	c, n := s.Stats()
	assert.Equal(t, 1, c)
	assert.Equal(t, 3, n)
	assert.Equal(t, "1 of 3 completed", s.Summary())
	assert.False(t, s.Empty())

	it, err := s.At(3)
	require.NoError(t, err)
	assert.Equal(t, "3", it.ID)

	_, err = s.At(0)
	assert.EqualError(t, err, "index out of range: have 3, got 0")
	_, err = s.At(4)
	assert.Error(t, err)
}

// TestRoundTrip walks load, create, toggle and delete against the in-memory
// server.
func TestRoundTrip(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	srv.NewID = func() string { return "1" }
	c := api.New(srv.URL)
	ctx := context.Background()

	s := New()
	s.Load(ctx, c)
	require.Empty(t, s.Err)
	assert.True(t, s.Empty())

	s.Input = "Buy milk"
	require.True(t, s.Add(ctx, c))
	require.Len(t, s.Items, 1)
	assert.Equal(t, "1", s.Items[0].ID)
	assert.Equal(t, "Buy milk", s.Items[0].Text)
	assert.False(t, s.Items[0].Completed)
	assert.Equal(t, "0 of 1 completed", s.Summary())
	assert.Empty(t, s.Input)

	s.Toggle(ctx, c, s.Items[0])
	reqs := srv.Requests()
	assert.JSONEq(t, `{"completed":true}`, reqs[len(reqs)-1].Body)
	assert.True(t, s.Items[0].Completed)
	assert.Equal(t, "1 of 1 completed", s.Summary())

	s.Delete(ctx, c, "1")
	assert.Empty(t, s.Err)
	assert.Empty(t, s.Items)
	assert.True(t, s.Empty())
}

func TestMalformedErrorBodyOnCreate(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	c := api.New(srv.URL)

	s := New()
	s.Load(context.Background(), c)
	s.Input = "Buy milk"
	srv.FailNext(503, "Service Unavailable")

	s.Add(context.Background(), c)
	assert.Equal(t, "HTTP error! status: 503", s.Err)
	assert.Empty(t, s.Items)
	assert.Equal(t, "Buy milk", s.Input)
}

func TestNullBodyChangesNothing(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	srv.Seed(model.Item{ID: "1", Text: "one"})
	c := api.New(srv.URL)
	ctx := context.Background()

	s := New()
	s.Load(ctx, c)
	require.Len(t, s.Items, 1)
	s.Err = "earlier"

	srv.FailNext(200, "null")
	s.Load(ctx, c)
	assert.False(t, s.Loading)
	assert.Equal(t, []model.Item{{ID: "1", Text: "one"}}, s.Items)

	s.Err = "earlier"
	s.Input = "Buy milk"
	srv.FailNext(200, "null")
	assert.True(t, s.Add(ctx, c))
	assert.Equal(t, []model.Item{{ID: "1", Text: "one"}}, s.Items)
	assert.Equal(t, "Buy milk", s.Input)
	assert.Equal(t, "earlier", s.Err)

	srv.FailNext(200, "null")
	s.Toggle(ctx, c, s.Items[0])
	assert.Equal(t, []model.Item{{ID: "1", Text: "one"}}, s.Items)
	assert.Equal(t, "earlier", s.Err)
}
