package media

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

type queueConfigStub struct {
	redisURL string
}

func (s queueConfigStub) GetRedisURL() string      { return s.redisURL }
func (s queueConfigStub) GetRedisTLSInsecure() bool { return false }
func (s queueConfigStub) GetAsynqQueueName() string { return "uploads" }
func (s queueConfigStub) GetAsynqConcurrency() int  { return 1 }

func TestClient_EnqueueUpload(t *testing.T) {
	srv := miniredis.RunT(t)

	client, err := NewClient(queueConfigStub{redisURL: "redis://" + srv.Addr()})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer client.Close()

	err = client.EnqueueUpload(context.Background(), UploadPayload{
		TargetKind:  TargetProductPDF,
		TargetID:    "6a1c9f8e-0000-0000-0000-000000000001",
		SpoolPath:   "/tmp/spool",
		FileName:    "spec.pdf",
		ContentType: "application/pdf",
		SizeBytes:   42,
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if len(srv.Keys()) == 0 {
		t.Fatal("expected task keys in redis after enqueue")
	}
}
