package log

import (
	"bytes"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogf(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	defer SetVerbosity(0)

	SetVerbosity(1)
	Logf(0, "level %d", 0)
	Logf(1, "level %d", 1)
	Logf(2, "level %d", 2)
	assert.Equal(t, "level 0\nlevel 1\n", buf.String())
	assert.True(t, V(1))
	assert.False(t, V(2))

	buf.Reset()
	w := VerboseWriter(2)
	n, err := w.Write([]byte("hidden"))
	assert.NoError(t, err)
	assert.Equal(t, 6, n)
	assert.Empty(t, buf.String())

	SetVerbosity(2)
	_, _ = w.Write([]byte("shown"))
	assert.Equal(t, "shown\n", buf.String())
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) lines() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Count(b.buf.String(), "\n")
}

func TestSetOutputWhileLogging(t *testing.T) {
	var a, b lockedBuffer
	SetOutput(&a)
	defer SetOutput(os.Stderr)

	const goroutines, messages = 4, 100
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < messages; i++ {
				Logf(0, "message %d", i)
			}
		}()
	}
	for i := 0; i < 10; i++ {
		if i%2 == 0 {
			SetOutput(&b)
		} else {
			SetOutput(&a)
		}
	}
	wg.Wait()
	assert.Equal(t, goroutines*messages, a.lines()+b.lines())
}
