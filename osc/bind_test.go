package osc_test

import (
	"testing"

	"github.com/halward42/go-oscbind/osc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noteOn struct {
	Address  string
	Note     int32
	Velocity float32
}

type ping struct {
	Address string
}

type levels struct {
	Address string
	Values  []int32
}

type tempo struct {
	Time osc.TimeTag
	A    noteOn
	B    ping
}

type heartbeat struct {
	Time     osc.TimeTag
	Elements []osc.Packet
}

func TestMarshalUnmarshalFlatMessage(t *testing.T) {
	in := noteOn{Address: "/note/on", Note: 60, Velocity: 0.8}

	p, err := osc.Marshal(in)
	require.NoError(t, err)
	require.NotNil(t, p.Message)
	assert.Equal(t, "/note/on", p.Message.Address)
	assert.Equal(t, []osc.Argument{osc.NewInt32(60), osc.NewFloat32(0.8)}, p.Message.Args)

	var out noteOn
	require.NoError(t, osc.Unmarshal(p, &out))
	assert.Equal(t, in, out)
}

func TestMarshalUnmarshalUnitArgs(t *testing.T) {
	in := ping{Address: "/ping"}

	p, err := osc.Marshal(in)
	require.NoError(t, err)
	assert.Empty(t, p.Message.Args)

	var out ping
	require.NoError(t, osc.Unmarshal(p, &out))
	assert.Equal(t, in, out)
}

func TestMarshalUnmarshalArgSequence(t *testing.T) {
	in := levels{Address: "/levels", Values: []int32{1, 2, 3, 4}}

	p, err := osc.Marshal(in)
	require.NoError(t, err)
	assert.Len(t, p.Message.Args, 4)

	var out levels
	require.NoError(t, osc.Unmarshal(p, &out))
	assert.Equal(t, in, out)
}

func TestMarshalUnmarshalFlatBundle(t *testing.T) {
	in := tempo{
		Time: osc.TimeTag{Seconds: 1, Fractional: 2},
		A:    noteOn{Address: "/note/on", Note: 64, Velocity: 1},
		B:    ping{Address: "/ping"},
	}

	p, err := osc.Marshal(in)
	require.NoError(t, err)
	require.NotNil(t, p.Bundle)
	assert.Equal(t, in.Time, p.Bundle.TimeTag)
	require.Len(t, p.Bundle.Elements, 2)

	var out tempo
	require.NoError(t, osc.Unmarshal(p, &out))
	assert.Equal(t, in, out)
}

func TestMarshalUnmarshalBundleSequence(t *testing.T) {
	in := heartbeat{
		Time: osc.TimeTag{Seconds: 5},
		Elements: []osc.Packet{
			osc.MessagePacket(osc.Message{Address: "/a"}),
			osc.MessagePacket(osc.Message{Address: "/b", Args: []osc.Argument{osc.NewString("x")}}),
		},
	}

	p, err := osc.Marshal(in)
	require.NoError(t, err)

	var out heartbeat
	require.NoError(t, osc.Unmarshal(p, &out))
	assert.Equal(t, in, out)
}

func TestMarshalUnsupportedFieldType(t *testing.T) {
	type withBool struct {
		Address string
		Flag    bool
	}
	_, err := osc.Marshal(withBool{Address: "/x", Flag: true})
	require.Error(t, err)
	var oerr *osc.Error
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, osc.KindUnsupportedType, oerr.Kind)
}

func TestMarshalFirstFieldWrongKind(t *testing.T) {
	type badFirst struct {
		Count int32
		Note  int32
	}
	_, err := osc.Marshal(badFirst{Count: 1, Note: 2})
	require.Error(t, err)
	var oerr *osc.Error
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, osc.KindUnsupportedType, oerr.Kind)
}

func TestUnmarshalArityMismatch(t *testing.T) {
	p := osc.MessagePacket(osc.Message{
		Address: "/note/on",
		Args:    []osc.Argument{osc.NewInt32(1)},
	})
	var out noteOn
	err := osc.Unmarshal(p, &out)
	require.Error(t, err)
	var oerr *osc.Error
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, osc.KindMessage, oerr.Kind)
}

func TestUnmarshalShapeMismatch(t *testing.T) {
	p := osc.BundlePacket(osc.Bundle{TimeTag: osc.TimeTag{Seconds: 1}})
	var out noteOn
	err := osc.Unmarshal(p, &out)
	require.Error(t, err)
	var oerr *osc.Error
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, osc.KindMessage, oerr.Kind)
}

func TestMarshalUnmarshalTupleMessage(t *testing.T) {
	in := []interface{}{"/note/on", int32(60), float32(0.8)}

	p, err := osc.Marshal(in)
	require.NoError(t, err)
	require.NotNil(t, p.Message)
	assert.Equal(t, "/note/on", p.Message.Address)
	assert.Equal(t, []osc.Argument{osc.NewInt32(60), osc.NewFloat32(0.8)}, p.Message.Args)

	var out []interface{}
	require.NoError(t, osc.Unmarshal(p, &out))
	assert.Equal(t, in, out)
}

func TestMarshalUnmarshalTupleBundle(t *testing.T) {
	in := []interface{}{
		osc.TimeTag{Seconds: 1, Fractional: 2},
		osc.MessagePacket(osc.Message{Address: "/a"}),
		osc.MessagePacket(osc.Message{Address: "/b", Args: []osc.Argument{osc.NewString("x")}}),
	}

	p, err := osc.Marshal(in)
	require.NoError(t, err)
	require.NotNil(t, p.Bundle)

	var out []interface{}
	require.NoError(t, osc.Unmarshal(p, &out))
	assert.Equal(t, in, out)
}

type noteOnArray [3]interface{}

func TestMarshalUnmarshalArrayRecord(t *testing.T) {
	in := noteOnArray{"/note/on", int32(64), float32(1)}

	p, err := osc.Marshal(in)
	require.NoError(t, err)
	require.NotNil(t, p.Message)

	var out noteOnArray
	require.NoError(t, osc.Unmarshal(p, &out))
	assert.Equal(t, in, out)
}

func TestUnmarshalSliceTargetRejectsNonInterfaceElement(t *testing.T) {
	p := osc.MessagePacket(osc.Message{Address: "/x"})
	var out []string
	err := osc.Unmarshal(p, &out)
	require.Error(t, err)
	var oerr *osc.Error
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, osc.KindMessage, oerr.Kind)
}

func TestMarshalEndToEndBytes(t *testing.T) {
	in := noteOn{Address: "/note/on", Note: 60, Velocity: 0.5}
	p, err := osc.Marshal(in)
	require.NoError(t, err)

	raw, err := osc.EncodeToBytes(p, osc.Framed)
	require.NoError(t, err)

	decoded, err := osc.DecodeFromBytes(raw, osc.Framed)
	require.NoError(t, err)

	var out noteOn
	require.NoError(t, osc.Unmarshal(decoded, &out))
	assert.Equal(t, in, out)
}
