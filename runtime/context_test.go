package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeDescriptor struct{ Tenant string }

type oneMethodService struct{ method string }

// ContextMethods has a pointer receiver because Runtime.Context keys
// registration identity off the service's address (fmt.Sprintf("%p", svc));
// a value-type service would format as its field dump instead of an
// address, collapsing two distinct registrations with equal fields into
// one. Every service in this module (contextsvc.HTTPService included) is
// registered by pointer for the same reason.
func (s *oneMethodService) ContextMethods() map[string]ContextHandler[fakeDescriptor] {
	return map[string]ContextHandler[fakeDescriptor]{
		s.method: func(ctx context.Context, payload []byte) ([]byte, error) { return payload, nil },
	}
}

func TestContextRegistersImportNames(t *testing.T) {
	ctx := context.Background()
	rt, err := New[fakeDescriptor](ctx)
	require.NoError(t, err)
	defer rt.Close(ctx)

	svc := &oneMethodService{method: "greet"}
	require.NoError(t, rt.Context(svc))

	_, ok := rt.contextHandlers["_plugy_context_greet"]
	require.True(t, ok, "expected _plugy_context_greet to be registered")
}

func TestContextRegistrationIsIdempotentPerService(t *testing.T) {
	ctx := context.Background()
	rt, err := New[fakeDescriptor](ctx)
	require.NoError(t, err)
	defer rt.Close(ctx)

	svc := &oneMethodService{method: "greet"}
	require.NoError(t, rt.Context(svc))
	require.NoError(t, rt.Context(svc))

	require.Len(t, rt.contextHandlers, 1)
}

func TestContextRejectsImportNameCollisionAcrossServices(t *testing.T) {
	ctx := context.Background()
	rt, err := New[fakeDescriptor](ctx)
	require.NoError(t, err)
	defer rt.Close(ctx)

	require.NoError(t, rt.Context(&oneMethodService{method: "greet"}))

	err = rt.Context(&oneMethodService{method: "greet"})
	require.Error(t, err)

	var rtErr *Error
	require.ErrorAs(t, err, &rtErr)
	require.Equal(t, KindLink, rtErr.Kind)
}

func TestGetMissingPluginIsNotFound(t *testing.T) {
	ctx := context.Background()
	rt, err := New[fakeDescriptor](ctx)
	require.NoError(t, err)
	defer rt.Close(ctx)

	_, err = rt.Get("does-not-exist")
	require.Error(t, err)

	var rtErr *Error
	require.ErrorAs(t, err, &rtErr)
	require.Equal(t, KindNotFound, rtErr.Kind)
}

func TestGetByTypeMissingPluginIsNotFound(t *testing.T) {
	ctx := context.Background()
	rt, err := New[fakeDescriptor](ctx)
	require.NoError(t, err)
	defer rt.Close(ctx)

	_, err = GetByType[*fileLoaderStub](rt)
	require.Error(t, err)

	var rtErr *Error
	require.ErrorAs(t, err, &rtErr)
	require.Equal(t, KindNotFound, rtErr.Kind)
}

type fileLoaderStub struct{}

func (fileLoaderStub) Bytes(context.Context) ([]byte, error) { return nil, nil }
func (fileLoaderStub) Name() string                          { return "stub" }
func (fileLoaderStub) Descriptor() fakeDescriptor            { return fakeDescriptor{} }
