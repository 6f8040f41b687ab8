package relay

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ReportController struct {
	Explicit  UserStore   `autowired:"userStore"`
	store     UserStore   `autowired:"userStore"`
	UserStore UserStore   `autowired:""`
	Repo      UserStore   `autowired:""`
	Missing   UserStore   `autowired:"nobody"`
	WrongType *OtherStore `autowired:"userStore"`
	Declared  UserStore
	Untouched UserStore
}

func bootContainer(t *testing.T, components ...*Component) *Container {
	t.Helper()
	cat := newTestCatalog(components...)
	c := NewContainer(cat, discardLogger())
	c.Register(cat.IDs())
	Inject(c, discardLogger())
	return c
}

func TestInject(t *testing.T) {
	c := bootContainer(t,
		memoryStoreComponent(),
		ControllerOf[ReportController](Inject("Declared", "userStore"), Inject("Nonexistent", "")),
	)

	store, ok := c.Get("userStore")
	require.True(t, ok)
	inst, ok := c.Get("reportController")
	require.True(t, ok)
	ctrl := inst.(*ReportController)

	t.Run("explicit name holds the registry instance", func(t *testing.T) {
		assert.Same(t, store, ctrl.Explicit)
	})

	t.Run("unexported field is set", func(t *testing.T) {
		assert.Same(t, store, ctrl.store)
	})

	t.Run("inferred name from the field", func(t *testing.T) {
		assert.Same(t, store, ctrl.UserStore)
	})

	t.Run("field typed by capability resolves through its tag", func(t *testing.T) {
		assert.Same(t, store, ctrl.Repo)
	})

	t.Run("missing dependency leaves the field unset", func(t *testing.T) {
		assert.Nil(t, ctrl.Missing)
	})

	t.Run("mismatched type leaves the field unset", func(t *testing.T) {
		assert.Nil(t, ctrl.WrongType)
	})

	t.Run("descriptor injection points", func(t *testing.T) {
		assert.Same(t, store, ctrl.Declared)
		assert.Nil(t, ctrl.Untouched)
	})
}

func TestInjectMissingRegistryEntry(t *testing.T) {
	c := bootContainer(t, userControllerComponent())

	inst, ok := c.Get("userController")
	require.True(t, ok)
	assert.Nil(t, inst.(*UserController).Store)
}

func TestInjectionPoints(t *testing.T) {
	comp := ControllerOf[ReportController](Inject("Declared", ""), Inject("Explicit", "other"))
	points := injectionPoints(reflect.TypeFor[ReportController](), comp)

	require.Len(t, points, 7)
	assert.Equal(t, Injection{Field: "Explicit", Name: "userStore"}, points[0])
	assert.Equal(t, Injection{Field: "UserStore", Name: ""}, points[2])
	assert.Equal(t, Injection{Field: "Declared", Name: ""}, points[6])
}
