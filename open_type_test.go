package zenject_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aerialflame7125/zenject"
	"github.com/aerialflame7125/zenject/internal/testutil"
)

func boxFamily() *zenject.OpenType {
	return &zenject.OpenType{
		Name: "*Box[T]",
		Match: func(t reflect.Type) bool {
			return t.Kind() == reflect.Pointer && strings.HasPrefix(t.Elem().Name(), "Box[")
		},
	}
}

func TestOpenType_Matches(t *testing.T) {
	t.Parallel()

	family := boxFamily()
	assert.True(t, family.Matches(zenject.TypeOf[*testutil.Box[int]]()))
	assert.True(t, family.Matches(zenject.TypeOf[*testutil.Box[string]]()))
	assert.False(t, family.Matches(zenject.TypeOf[testutil.Box[int]]()))
	assert.False(t, family.Matches(zenject.TypeOf[*testutil.Database]()))
	assert.False(t, family.Matches(nil))
	assert.Equal(t, "*Box[T]", family.String())

	var missing *zenject.OpenType
	assert.False(t, missing.Matches(zenject.TypeOf[*testutil.Box[int]]()))
	assert.Equal(t, "<nil>", missing.String())
}

func TestBindOpen(t *testing.T) {
	t.Run("transient builds each member", func(t *testing.T) {
		t.Parallel()

		c := testutil.NewContainer(t)
		c.BindOpen(boxFamily()).AsTransient()

		ints := testutil.AssertResolvable[*testutil.Box[int]](t, c)
		strs := testutil.AssertResolvable[*testutil.Box[string]](t, c)
		assert.NotEmpty(t, ints.ID)
		assert.NotEmpty(t, strs.ID)
		assert.NotSame(t, ints, testutil.AssertResolvable[*testutil.Box[int]](t, c))
	})

	t.Run("singleton caches per type", func(t *testing.T) {
		t.Parallel()

		c := testutil.NewContainer(t)
		c.BindOpen(boxFamily()).AsSingle()

		ints := testutil.AssertSame[*testutil.Box[int]](t, c)
		strs := testutil.AssertSame[*testutil.Box[string]](t, c)
		assert.NotEqual(t, ints.ID, strs.ID)
	})

	t.Run("exact bindings win", func(t *testing.T) {
		t.Parallel()

		c := testutil.NewContainer(t)
		c.BindOpen(boxFamily()).AsTransient()
		exact := &testutil.Box[int]{ID: "exact", Value: 7}
		zenject.BindInstanceAs(c, exact)

		assert.Same(t, exact, testutil.AssertResolvable[*testutil.Box[int]](t, c))
		assert.NotEqual(t, "exact", testutil.AssertResolvable[*testutil.Box[string]](t, c).ID)
	})

	t.Run("identifiers", func(t *testing.T) {
		t.Parallel()

		c := testutil.NewContainer(t)
		c.BindOpen(boxFamily()).WithId("boxes").AsSingle()

		testutil.AssertNotFound[*testutil.Box[int]](t, c)
		testutil.AssertResolvableId[*testutil.Box[int]](t, c, "boxes")
	})

	t.Run("undescribed members fail", func(t *testing.T) {
		t.Parallel()

		c := testutil.NewContainer(t)
		c.BindOpen(boxFamily()).AsTransient()

		_, err := zenject.Resolve[*testutil.Box[bool]](c)
		assert.ErrorIs(t, err, zenject.ErrNoDescriptor)
	})

	t.Run("families need a predicate", func(t *testing.T) {
		t.Parallel()

		c := testutil.NewContainer(t)
		assert.Error(t, c.BindOpen(&zenject.OpenType{Name: "empty"}).AsTransient().Err())
		assert.Error(t, c.BindOpen(boxFamily()).To(zenject.TypeOf[*testutil.Box[int]]()).Err())
	})
}
