package secrets

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
)

func TestStatic(t *testing.T) {
	s := Static{"signing": "abc", "blank": ""}

	got, err := s.Get(context.Background(), "signing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "abc" {
		t.Errorf("Get = %q, want abc", got)
	}

	for _, id := range []string{"missing", "blank"} {
		if _, err := s.Get(context.Background(), id); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get(%q) error = %v, want ErrNotFound", id, err)
		}
	}
}

func TestEnv(t *testing.T) {
	t.Setenv("SLACKQUIZ_SLACK_SIGNING_SECRET", "from-env")

	got, err := Env{Prefix: "SLACKQUIZ_"}.Get(context.Background(), "slack-signing-secret")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "from-env" {
		t.Errorf("Get = %q, want from-env", got)
	}

	if _, err := (Env{}).Get(context.Background(), "definitely-not-set-anywhere"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

type countingStore struct {
	mu    sync.Mutex
	calls int
	value string
	err   error
}

func (c *countingStore) Get(_ context.Context, _ string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return []byte(c.value), nil
}

func TestCachedReusesValueWithinTTL(t *testing.T) {
	backend := &countingStore{value: "s3cret"}
	cached := NewCached(backend, time.Minute)
	now := time.Unix(1_700_000_000, 0)
	cached.clock = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		got, err := cached.Get(context.Background(), "id")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if string(got) != "s3cret" {
			t.Fatalf("Get = %q", got)
		}
	}
	if backend.calls != 1 {
		t.Fatalf("expected backend called once, got %d", backend.calls)
	}

	now = now.Add(2 * time.Minute)
	if _, err := cached.Get(context.Background(), "id"); err != nil {
		t.Fatalf("Get after expiry: %v", err)
	}
	if backend.calls != 2 {
		t.Fatalf("expected refetch after expiry, calls=%d", backend.calls)
	}
}

type blockingStore struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingStore) Get(ctx context.Context, _ string) ([]byte, error) {
	select {
	case b.started <- struct{}{}:
	default:
	}
	<-b.release
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []byte("v"), nil
}

func TestCachedSurvivesFirstCallerCancel(t *testing.T) {
	backend := &blockingStore{started: make(chan struct{}, 1), release: make(chan struct{})}
	cached := NewCached(backend, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := cached.Get(ctx, "id")
		first <- err
	}()
	<-backend.started

	second := make(chan error, 1)
	go func() {
		_, err := cached.Get(context.Background(), "id")
		second <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	close(backend.release)

	if err := <-second; err != nil {
		t.Fatalf("second caller failed after first caller cancelled: %v", err)
	}
	if err := <-first; err != nil {
		t.Fatalf("shared lookup observed the cancellation: %v", err)
	}
	got, err := cached.Get(context.Background(), "id")
	if err != nil || string(got) != "v" {
		t.Fatalf("expected cached value, got %q, %v", got, err)
	}
}

func TestCachedDoesNotCacheErrors(t *testing.T) {
	backend := &countingStore{err: errors.New("unavailable")}
	cached := NewCached(backend, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := cached.Get(context.Background(), "id"); err == nil {
			t.Fatal("expected error")
		}
	}
	if backend.calls != 2 {
		t.Fatalf("expected every failed lookup to reach the backend, calls=%d", backend.calls)
	}
}

func TestCachedDisabled(t *testing.T) {
	backend := &countingStore{value: "v"}
	cached := NewCached(backend, 0)
	_, _ = cached.Get(context.Background(), "id")
	_, _ = cached.Get(context.Background(), "id")
	if backend.calls != 2 {
		t.Fatalf("expected pass-through, calls=%d", backend.calls)
	}
}

type fakeSecretsManager struct {
	out *secretsmanager.GetSecretValueOutput
	err error
	id  string
}

func (f *fakeSecretsManager) GetSecretValue(_ context.Context, in *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.id = aws.ToString(in.SecretId)
	return f.out, f.err
}

func TestAWS(t *testing.T) {
	tests := []struct {
		name    string
		fake    *fakeSecretsManager
		want    string
		wantErr error
	}{
		{"string", &fakeSecretsManager{out: &secretsmanager.GetSecretValueOutput{SecretString: aws.String("abc")}}, "abc", nil},
		{"binary", &fakeSecretsManager{out: &secretsmanager.GetSecretValueOutput{SecretBinary: []byte("bin")}}, "bin", nil},
		{"empty", &fakeSecretsManager{out: &secretsmanager.GetSecretValueOutput{}}, "", ErrNotFound},
		{"not found", &fakeSecretsManager{err: &types.ResourceNotFoundException{}}, "", ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewAWSWithClient(tt.fake).Get(context.Background(), "arn:slack")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Get = %q, want %q", got, tt.want)
			}
			if tt.fake.id != "arn:slack" {
				t.Errorf("SecretId = %q", tt.fake.id)
			}
		})
	}

	other := &fakeSecretsManager{err: errors.New("throttled")}
	if _, err := NewAWSWithClient(other).Get(context.Background(), "x"); err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("expected wrapped backend error, got %v", err)
	}
}
