package pluto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simblaster/pkg/contract"
	"simblaster/pkg/decay"
)

func newPluto(t *testing.T) *Pluto {
	t.Helper()
	p, err := New(contract.GeneratorOptions{Binary: "/opt/ant/Ant-pluto", Emin: 1420, Emax: 1580, Level: decay.DefaultLevel, AddFlags: "--flatEbeam"})
	require.NoError(t, err)
	return p
}

func TestNewRequiresBinary(t *testing.T) {
	_, err := New(contract.GeneratorOptions{})
	assert.ErrorIs(t, err, contract.ErrInvalidInput)
}

func TestTag(t *testing.T) {
	p := newPluto(t)
	tag, err := p.Tag(contract.Channel{Notation: "p eta' [g rho0 [g pi0 [g g]]]"})
	require.NoError(t, err)
	assert.Equal(t, "etap_grho0_4g", tag)

	// 带引号的旧格式
	tag, err = p.Tag(contract.Channel{Notation: `"p pi0 [g g]"`})
	require.NoError(t, err)
	assert.Equal(t, "pi0_gg", tag)

	_, err = p.Tag(contract.Channel{Notation: "p [g g]"})
	assert.ErrorIs(t, err, contract.ErrChannelInvalid)
	assert.ErrorIs(t, err, decay.ErrUnresolvableSpan)
}

func TestCommand(t *testing.T) {
	p := newPluto(t)
	cmd, err := p.Command(contract.Job{
		Number:    1,
		Channel:   contract.Channel{Notation: "p pi0 [g g]", Files: 1, Events: 100000},
		MCGenFile: "/data/mcgen/pluto_pi0_gg_0001.root",
	})
	require.NoError(t, err)
	assert.Equal(t, "/opt/ant/Ant-pluto --reaction 'p pi0 [g g]' -o /data/mcgen/pluto_pi0_gg_0001.root -n 100000 --Emin 1420 --Emax 1580 --no-bulk --flatEbeam", cmd)

	_, err = p.Command(contract.Job{Channel: contract.Channel{Events: 10}})
	assert.ErrorIs(t, err, contract.ErrInvalidInput)
}
