package effectchain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dummyFactory(_ Params, _ int) (Stage, error) {
	return &spyStage{name: "dummy", rec: &recorder{}}, nil
}

func TestRegistryRegister(t *testing.T) {
	t.Parallel()

	t.Run("registers and looks up factory", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry()
		require.NoError(t, r.Register("echo", dummyFactory))
		assert.NotNil(t, r.Lookup("echo"))
	})

	t.Run("rejects empty name", func(t *testing.T) {
		t.Parallel()

		require.Error(t, NewRegistry().Register("", dummyFactory))
	})

	t.Run("rejects nil factory", func(t *testing.T) {
		t.Parallel()

		require.Error(t, NewRegistry().Register("echo", nil))
	})

	t.Run("rejects duplicate registration", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry()
		require.NoError(t, r.Register("echo", dummyFactory))
		require.ErrorIs(t, r.Register("echo", dummyFactory), errDuplicateStage)
	})

	t.Run("must register panics on duplicate", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry()
		r.MustRegister("echo", dummyFactory)
		assert.Panics(t, func() { r.MustRegister("echo", dummyFactory) })
	})

	t.Run("replace overrides existing", func(t *testing.T) {
		t.Parallel()

		r := DefaultRegistry()
		r.Replace(StagePitch, dummyFactory)

		st, err := r.Lookup(StagePitch)(DefaultParams(), 44100)
		require.NoError(t, err)
		assert.Equal(t, "dummy", st.Name())
	})
}

func TestRegistryLookupUnknown(t *testing.T) {
	t.Parallel()

	assert.Nil(t, NewRegistry().Lookup("nonexistent"))
}

func TestDefaultRegistry(t *testing.T) {
	t.Parallel()

	r := DefaultRegistry()
	assert.Equal(t, []string{StageLowPass, StagePitch, StageReverb, StageTempo}, r.Names())

	p, _ := normalize(DefaultParams(), 44100)
	for _, name := range StageOrder() {
		factory := r.Lookup(name)
		require.NotNil(t, factory, name)

		st, err := factory(p, 44100)
		require.NoError(t, err, name)
		assert.Equal(t, name, st.Name())
	}
}
