package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog(t *testing.T) {
	t.Run("keeps registration order", func(t *testing.T) {
		cat := newTestCatalog(userControllerComponent(), memoryStoreComponent())
		assert.Equal(t, []string{TypeIDOf[UserController](), TypeIDOf[MemoryStore]()}, cat.IDs())
		assert.Equal(t, 2, cat.Len())
	})

	t.Run("replaces a component with the same id", func(t *testing.T) {
		cat := newTestCatalog(memoryStoreComponent(), userControllerComponent())
		cat.MustAdd(ServiceOf[MemoryStore](Named("replaced")))

		comp, ok := cat.Lookup(TypeIDOf[MemoryStore]())
		require.True(t, ok)
		assert.Equal(t, "replaced", comp.Name)
		assert.Equal(t, TypeIDOf[MemoryStore](), cat.IDs()[0])
	})

	t.Run("rejects invalid components", func(t *testing.T) {
		cat := NewCatalog()
		assert.Error(t, cat.Add(nil))
		assert.Error(t, cat.Add(&Component{ID: "x.Y"}))
		assert.Error(t, cat.Add(ControllerOf[UserController](Handle("", "/x"))))
		assert.Panics(t, func() { cat.MustAdd(nil) })
	})

	t.Run("IDs returns a copy", func(t *testing.T) {
		cat := newTestCatalog(userControllerComponent())
		ids := cat.IDs()
		ids[0] = "mutated"
		assert.Equal(t, TypeIDOf[UserController](), cat.IDs()[0])
	})
}

func TestComponentOptions(t *testing.T) {
	comp := userControllerComponent()
	assert.Equal(t, Controller, comp.Stereotype)
	assert.Equal(t, "/user/", comp.BasePath)
	require.Len(t, comp.Routes, 5)
	assert.Equal(t, Route{Handler: "GetUserByID", Path: "/getUserById", Params: []string{"", "", "id"}}, comp.Routes[0])

	svc := memoryStoreComponent()
	assert.Equal(t, Service, svc.Stereotype)
	assert.Equal(t, "userStore", svc.Name)
	require.Len(t, svc.Capabilities, 1)
	assert.Equal(t, TypeIDOf[UserStore](), svc.Capabilities[0].Tag)

	assert.Equal(t, "controller", Controller.String())
	assert.Equal(t, "service", Service.String())
	assert.Equal(t, "none", None.String())
}
