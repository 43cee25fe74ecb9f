//go:build integration

package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"
)

var (
	sharedMongo     *Container
	sharedMongoErr  error
	sharedMongoOnce sync.Once
	sharedMongoMu   sync.RWMutex
)

// GetSharedMongoDB returns the package-wide MongoDB container, starting it once.
func GetSharedMongoDB(ctx context.Context) (*Container, error) {
	sharedMongoOnce.Do(func() {
		sharedMongoMu.Lock()
		defer sharedMongoMu.Unlock()
		sharedMongo, sharedMongoErr = SetupMongoDB(ctx)
	})

	sharedMongoMu.RLock()
	defer sharedMongoMu.RUnlock()
	return sharedMongo, sharedMongoErr
}

// CleanupSharedMongoDB terminates the shared container.
func CleanupSharedMongoDB(ctx context.Context) error {
	sharedMongoMu.Lock()
	defer sharedMongoMu.Unlock()

	if sharedMongo != nil {
		return sharedMongo.Cleanup(ctx)
	}
	return nil
}

// SetupTestMainWithMongoDB wraps m.Run with a shared MongoDB container:
//
//	func TestMain(m *testing.M) {
//		os.Exit(testutil.SetupTestMainWithMongoDB(context.Background(), m))
//	}
func SetupTestMainWithMongoDB(ctx context.Context, m *testing.M) int {
	if _, err := GetSharedMongoDB(ctx); err != nil {
		panic(err)
	}

	code := m.Run()

	if err := CleanupSharedMongoDB(ctx); err != nil {
		_, _ = os.Stderr.WriteString("Warning: failed to cleanup shared MongoDB container: " + err.Error() + "\n")
	}

	return code
}

// GetSharedContainerURI returns the shared container URI. It panics when
// GetSharedMongoDB was never called.
func GetSharedContainerURI() string {
	sharedMongoMu.RLock()
	defer sharedMongoMu.RUnlock()

	if sharedMongo == nil {
		panic("shared MongoDB container not initialized - call GetSharedMongoDB first")
	}
	return sharedMongo.URI
}

// SanitizeDBName turns a test name into a unique MongoDB database name.
func SanitizeDBName(testName string) string {
	sanitized := strings.NewReplacer("/", "_", "\\", "_", " ", "_", ".", "_").Replace(testName)
	if len(sanitized) > 50 {
		sanitized = sanitized[:50]
	}
	return fmt.Sprintf("%s_%d", sanitized, time.Now().UnixNano()%1000000)
}
