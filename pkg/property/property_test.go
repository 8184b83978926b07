package property_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/watch/pkg/errors"
	"github.com/agentstation/watch/pkg/property"
	"github.com/agentstation/watch/pkg/source"
)

func TestDefineAndGet(t *testing.T) {
	obj := property.NewObject()
	require.NoError(t, obj.Define("counter", 0))

	v, ok := obj.Get("counter")
	assert.True(t, ok)
	assert.Equal(t, 0, v)

	_, ok = obj.Get("missing")
	assert.False(t, ok)
}

func TestDefineDuplicate(t *testing.T) {
	obj := property.NewObject()
	require.NoError(t, obj.Define("counter", 0))

	err := obj.Define("counter", 1)
	assert.True(t, errors.IsValidationError(err))

	// Original value untouched.
	v, _ := obj.Get("counter")
	assert.Equal(t, 0, v)
}

func TestDefineEmptyName(t *testing.T) {
	obj := property.NewObject()
	assert.True(t, errors.IsValidationError(obj.Define("", 0)))
}

func TestSetUndefined(t *testing.T) {
	obj := property.NewObject()
	err := obj.Set("ghost", 1)
	assert.True(t, errors.IsNotFound(err))
}

func TestSetNotifies(t *testing.T) {
	obj := property.NewObject()
	require.NoError(t, obj.Define("counter", 0))

	var got []source.Event
	reg, err := obj.Register(source.Property("counter"), func(ev source.Event) {
		got = append(got, ev)
	})
	require.NoError(t, err)
	defer reg.Unregister()

	require.NoError(t, obj.Set("counter", 10))

	require.Len(t, got, 1)
	assert.Equal(t, "counter", got[0].Name)
	assert.Equal(t, 10, got[0].Value)
	assert.Same(t, obj, got[0].Sender)
	assert.Same(t, obj, got[0].Source)
	assert.False(t, got[0].Time.IsZero())
}

func TestRegisterUndefinedProperty(t *testing.T) {
	obj := property.NewObject()

	reg, err := obj.Register(source.Property("nope"), func(source.Event) {})
	assert.Nil(t, reg)
	assert.True(t, errors.IsSourceInvalid(err))
}

func TestRegisterNilHandler(t *testing.T) {
	obj := property.NewObject()
	require.NoError(t, obj.Define("counter", 0))

	_, err := obj.Register(source.Property("counter"), nil)
	assert.True(t, errors.IsValidationError(err))
}

func TestUnregisterStopsDelivery(t *testing.T) {
	obj := property.NewObject()
	require.NoError(t, obj.Define("counter", 0))

	count := 0
	reg, err := obj.Register(source.Property("counter"), func(source.Event) { count++ })
	require.NoError(t, err)

	require.NoError(t, obj.Set("counter", 1))
	assert.Equal(t, 1, count)

	reg.Unregister()
	require.NoError(t, obj.Set("counter", 2))
	assert.Equal(t, 1, count, "no delivery after unregister")

	reg.Unregister() // idempotent
	assert.Equal(t, 0, obj.Observers("counter"))
}

func TestMultipleRegistrations(t *testing.T) {
	obj := property.NewObject()
	require.NoError(t, obj.Define("counter", 0))

	a, b := 0, 0
	regA, err := obj.Register(source.Property("counter"), func(source.Event) { a++ })
	require.NoError(t, err)
	regB, err := obj.Register(source.Property("counter"), func(source.Event) { b++ })
	require.NoError(t, err)

	require.NoError(t, obj.Set("counter", 1))
	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)

	regA.Unregister()
	require.NoError(t, obj.Set("counter", 2))
	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
	regB.Unregister()
}

func TestOnlyMatchingPropertyNotifies(t *testing.T) {
	obj := property.NewObject()
	require.NoError(t, obj.Define("counter", 0))
	require.NoError(t, obj.Define("other", ""))

	count := 0
	reg, err := obj.Register(source.Property("counter"), func(source.Event) { count++ })
	require.NoError(t, err)
	defer reg.Unregister()

	require.NoError(t, obj.Set("other", "hello"))
	assert.Zero(t, count)
}

func TestSenderFilterOnPropertySource(t *testing.T) {
	obj := property.NewObject()
	other := property.NewObject()
	require.NoError(t, obj.Define("counter", 0))

	count := 0
	reg, err := obj.Register(source.Property("counter").From(other), func(source.Event) { count++ })
	require.NoError(t, err)
	defer reg.Unregister()

	// Events from obj never match a filter pinned to another object.
	require.NoError(t, obj.Set("counter", 1))
	assert.Zero(t, count)
}
