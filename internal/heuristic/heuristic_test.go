package heuristic

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/snipsave/internal/clip"
)

type fakeQuerier struct {
	proc       clip.Process
	ownerErr   error
	formats    []clip.Format
	formatsErr error

	ownerCalls   int
	formatsCalls int
}

func (f *fakeQuerier) Owner() (clip.Process, error) {
	f.ownerCalls++
	return f.proc, f.ownerErr
}

func (f *fakeQuerier) Formats() ([]clip.Format, error) {
	f.formatsCalls++
	return f.formats, f.formatsErr
}

func TestProcessSignal(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{`C:\Windows\System32\svchost.exe`, true},
		{`C:\WINDOWS\system32\SVCHOST.EXE`, true},
		{`C:/Windows/System32/svchost.exe`, true},
		{`svchost.exe`, true},
		{`C:\Windows\explorer.exe`, false},
		{`C:\evil\svchost.exe.bak`, false},
		{`C:\svchost.exe\notepad.exe`, false},
		{``, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, ProcessSignal(tt.path, DefaultProcessName))
		})
	}
	assert.False(t, ProcessSignal(`C:\svchost.exe`, ""))
}

func TestFormatSignal(t *testing.T) {
	f, ok := FormatSignal([]clip.Format{clip.FormatUnicodeText, clip.FormatDIB}, DefaultPreference)
	assert.True(t, ok)
	assert.Equal(t, clip.FormatDIB, f)

	_, ok = FormatSignal([]clip.Format{clip.FormatUnicodeText}, DefaultPreference)
	assert.False(t, ok)

	_, ok = FormatSignal(nil, DefaultPreference)
	assert.False(t, ok)

	// preference order wins over offer order
	f, ok = FormatSignal(
		[]clip.Format{clip.FormatDIB, clip.FormatDIBV5},
		[]clip.Format{clip.FormatDIBV5, clip.FormatDIB},
	)
	assert.True(t, ok)
	assert.Equal(t, clip.FormatDIBV5, f)
}

func TestLikelyTrustedCapture(t *testing.T) {
	svchost := clip.Process{PID: 1234, ImagePath: `C:\Windows\System32\svchost.exe`}
	explorer := clip.Process{PID: 99, ImagePath: `C:\Windows\explorer.exe`}
	withDIB := []clip.Format{clip.FormatDIB, clip.FormatBitmap}
	textOnly := []clip.Format{clip.FormatUnicodeText}

	tests := []struct {
		name    string
		cfg     Config
		q       *fakeQuerier
		trusted bool
	}{
		{"both signals", DefaultConfig(), &fakeQuerier{proc: svchost, formats: withDIB}, true},
		{"wrong process", DefaultConfig(), &fakeQuerier{proc: explorer, formats: withDIB}, false},
		{"no bitmap", DefaultConfig(), &fakeQuerier{proc: svchost, formats: textOnly}, false},
		{"format optional", Config{ProcessName: DefaultProcessName}, &fakeQuerier{proc: svchost, formats: textOnly}, true},
		{"process disabled", Config{RequireFormat: true}, &fakeQuerier{ownerErr: clip.ErrOwnerUnknown, formats: withDIB}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := New(tt.q, tt.cfg).LikelyTrustedCapture()
			require.NoError(t, err)
			assert.Equal(t, tt.trusted, v.Trusted)
		})
	}
}

func TestLikelyTrustedCaptureSkipsFormatsOnWrongProcess(t *testing.T) {
	q := &fakeQuerier{proc: clip.Process{ImagePath: `C:\notepad.exe`}, formats: []clip.Format{clip.FormatDIB}}
	v, err := New(q, DefaultConfig()).LikelyTrustedCapture()
	require.NoError(t, err)
	assert.False(t, v.Trusted)
	assert.Equal(t, `C:\notepad.exe`, v.Process)
	assert.Zero(t, q.formatsCalls)
}

func TestLikelyTrustedCaptureQueryErrors(t *testing.T) {
	t.Run("owner", func(t *testing.T) {
		q := &fakeQuerier{ownerErr: clip.ErrOwnerUnknown}
		v, err := New(q, DefaultConfig()).LikelyTrustedCapture()
		assert.False(t, v.Trusted)

		var qe *QueryError
		require.ErrorAs(t, err, &qe)
		assert.Equal(t, "owner", qe.Op)
		assert.ErrorIs(t, err, clip.ErrOwnerUnknown)
	})

	t.Run("formats", func(t *testing.T) {
		boom := errors.New("boom")
		q := &fakeQuerier{proc: clip.Process{ImagePath: "svchost.exe"}, formatsErr: boom}
		v, err := New(q, DefaultConfig()).LikelyTrustedCapture()
		assert.False(t, v.Trusted)

		var qe *QueryError
		require.ErrorAs(t, err, &qe)
		assert.Equal(t, "formats", qe.Op)
		assert.ErrorIs(t, err, boom)
	})
}
