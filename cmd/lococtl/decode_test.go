package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		in   string
		want []byte
	}{
		{"837C", []byte{0x83, 0x7C}},
		{"83 7c", []byte{0x83, 0x7C}},
		{"0xA0:0A:7B:2E", []byte{0xA0, 0x0A, 0x7B, 0x2E}},
		{" b0-05-30-7a ", []byte{0xB0, 0x05, 0x30, 0x7A}},
	}

	for _, tt := range tests {
		got, err := parseHex(tt.in)
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.want, got, tt.in)
	}

	for _, in := range []string{"", "  ", "8", "zz"} {
		_, err := parseHex(in)
		require.Error(t, err, in)
	}
}

func TestDecodeLine(t *testing.T) {
	line, ok := decodeLine("83 7C")
	require.True(t, ok)
	require.Equal(t, "[83 7C] OPC_GPON GpOn", line)

	line, ok = decodeLine("83 7D")
	require.False(t, ok)
	require.Contains(t, line, "[83 7D] error:")

	_, ok = decodeLine("nothex")
	require.False(t, ok)
}

func TestDecodeCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	rootCmd.SetArgs([]string{"decode", "837C", "A0 0A 7B 2E"})
	require.NoError(t, rootCmd.Execute())
	require.Contains(t, out.String(), "OPC_GPON")
	require.Contains(t, out.String(), "OPC_LOCO_SPD")

	out.Reset()
	rootCmd.SetArgs([]string{"decode", "837C", "8300"})
	require.ErrorContains(t, rootCmd.Execute(), "1 of 2 frames failed")
}
