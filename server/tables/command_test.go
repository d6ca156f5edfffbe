package tables

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCommand(t *testing.T) {
	cmd, err := DecodeCommand([]byte(`{"type":"start","tableId":"4","config":{"psModel":"ps3","controllerCount":2,"hourlyRate":80}}`))
	require.NoError(t, err)
	start, ok := cmd.(Start)
	require.True(t, ok)
	assert.Equal(t, "4", start.TableID)
	assertMoney(t, 80, start.Config.HourlyRate)

	cmd, err = DecodeCommand([]byte(`{"type":"transfer","from":"1","to":"2"}`))
	require.NoError(t, err)
	assert.Equal(t, Transfer{From: "1", To: "2"}, cmd)

	cmd, err = DecodeCommand([]byte(`{"type":"add_table"}`))
	require.NoError(t, err)
	assert.Equal(t, AddTable{}, cmd)
}

func TestDecodeCommandErrors(t *testing.T) {
	for name, input := range map[string]string{
		"unknown type":    `{"type":"explode"}`,
		"start no config": `{"type":"start","tableId":"1"}`,
		"bad console":     `{"type":"start","tableId":"1","config":{"psModel":"xbox","controllerCount":2}}`,
		"bad controllers": `{"type":"start","tableId":"1","config":{"psModel":"ps4","controllerCount":3}}`,
		"product missing": `{"type":"add_product","tableId":"1"}`,
		"not json":        `start 1`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeCommand([]byte(input))
			assert.Error(t, err)
		})
	}

	_, err := DecodeCommand([]byte(`{"type":"explode"}`))
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestEncodeDecodeEveryCommand(t *testing.T) {
	commands := []Command{
		Start{TableID: "1", Config: ps4(100)},
		Pause{TableID: "1"},
		Resume{TableID: "1"},
		Stop{TableID: "1"},
		Reset{TableID: "1"},
		AddProduct{TableID: "1", Product: cola()},
		RemoveProduct{TableID: "1", ProductID: "cola"},
		Transfer{From: "1", To: "2"},
		AddTable{},
		DeleteTable{TableID: "1"},
		Rename{TableID: "1", Name: "VIP"},
	}
	for _, cmd := range commands {
		data, err := EncodeCommand(cmd)
		require.NoError(t, err, cmd.Kind())
		decoded, err := DecodeCommand(data)
		require.NoError(t, err, cmd.Kind())
		assert.Equal(t, cmd.Kind(), decoded.Kind())
	}
}
