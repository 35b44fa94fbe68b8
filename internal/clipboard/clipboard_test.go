package clipboard

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClipboard struct {
	mu   sync.Mutex
	text string
	fail bool
}

func (f *fakeClipboard) write(s string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("no display")
	}
	f.text = s
	return nil
}

func (f *fakeClipboard) read() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.text, nil
}

func (f *fakeClipboard) get() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.text
}

func useFake(t *testing.T) *fakeClipboard {
	t.Helper()
	fake := &fakeClipboard{}
	origWrite, origRead := writeAll, readAll
	writeAll, readAll = fake.write, fake.read
	t.Cleanup(func() {
		writeAll, readAll = origWrite, origRead
	})
	return fake
}

func TestCopyWithTimeoutClears(t *testing.T) {
	fake := useFake(t)

	done, err := CopyWithTimeout("p@ss", 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, "p@ss", fake.get())

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("clipboard was not cleared")
	}
	assert.Empty(t, fake.get())
}

func TestCopyWithTimeoutKeepsNewerContent(t *testing.T) {
	fake := useFake(t)

	done, err := CopyWithTimeout("p@ss", 20*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, fake.write("something else"))

	<-done
	assert.Equal(t, "something else", fake.get())
}

func TestCopyWithTimeoutZeroNeverClears(t *testing.T) {
	fake := useFake(t)

	done, err := CopyWithTimeout("p@ss", 0)
	require.NoError(t, err)
	<-done
	assert.Equal(t, "p@ss", fake.get())
}

func TestCopyWithTimeoutWriteError(t *testing.T) {
	fake := useFake(t)
	fake.fail = true

	_, err := CopyWithTimeout("p@ss", time.Second)
	assert.Error(t, err)
}
