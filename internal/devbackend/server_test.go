package devbackend_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"captiondesk/internal/api"
	"captiondesk/internal/moderation"
	"captiondesk/internal/queue"
	"captiondesk/internal/testsupport"
)

func TestSubmitTextCreatesPendingItem(t *testing.T) {
	backend := testsupport.StartBackend(t)
	client, _ := backend.NewClient(t, "")
	ctx := context.Background()

	result, err := client.SubmitText(ctx, "hello world", queue.ToneClinical)
	if err != nil {
		t.Fatalf("SubmitText: %v", err)
	}
	if result.Caption == "" || result.Metadata.Tone != queue.ToneClinical || result.Metadata.QueueID != "1" {
		t.Fatalf("result = %+v", result)
	}
	if result.Transcription != "hello world" {
		t.Fatalf("transcription = %q", result.Transcription)
	}

	items, err := client.ListQueue(ctx)
	if err != nil {
		t.Fatalf("ListQueue: %v", err)
	}
	if len(items) != 1 || items[0].Status != queue.StatusPending || items[0].Source != queue.SourceText {
		t.Fatalf("items = %+v", items)
	}
}

func TestSubmitTextRejectsOverLimit(t *testing.T) {
	backend := testsupport.StartBackend(t)
	client, _ := backend.NewClient(t, "")

	_, err := client.SubmitText(context.Background(), strings.Repeat("a", 281), queue.ToneAuto)
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(apiErr.Message, "too long") {
		t.Fatalf("message = %q", apiErr.Message)
	}
}

func TestIdempotencyKeyReplaysSubmission(t *testing.T) {
	backend := testsupport.StartBackend(t)
	client, _ := backend.NewClient(t, "")
	ctx := context.Background()

	first, err := client.SubmitText(ctx, "once", queue.ToneAuto, api.WithIdempotencyKey("k-1"))
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := client.SubmitText(ctx, "once", queue.ToneAuto, api.WithIdempotencyKey("k-1"))
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if first.Metadata.QueueID != second.Metadata.QueueID {
		t.Fatalf("queue ids differ: %s vs %s", first.Metadata.QueueID, second.Metadata.QueueID)
	}
	items, _ := client.ListQueue(ctx)
	if len(items) != 1 {
		t.Fatalf("expected one item, got %d", len(items))
	}
}

func TestSubmitAudio(t *testing.T) {
	backend := testsupport.StartBackend(t)
	client, _ := backend.NewClient(t, "")

	var last int
	result, err := client.SubmitAudio(context.Background(), api.AudioUpload{FileName: "clip.ogg", Data: []byte("OggS fake")}, queue.ToneTeasing, func(p int) { last = p })
	if err != nil {
		t.Fatalf("SubmitAudio: %v", err)
	}
	if result.Transcription == "" || result.Caption == "" || result.Metadata.QueueID == "" {
		t.Fatalf("result = %+v", result)
	}
	if last != 100 {
		t.Fatalf("progress ended at %d", last)
	}

	_, err = client.SubmitAudio(context.Background(), api.AudioUpload{FileName: "notes.txt", Data: []byte("x")}, queue.ToneAuto, nil)
	if api.KindOf(err) != api.KindBackend {
		t.Fatalf("expected backend error for bad type, got %v", err)
	}
}

func TestLifecycleIsEnforced(t *testing.T) {
	backend := testsupport.StartBackend(t)
	client, _ := backend.NewClient(t, "")
	ctx := context.Background()

	res, err := client.SubmitText(ctx, "lifecycle", queue.ToneAuto)
	if err != nil {
		t.Fatalf("SubmitText: %v", err)
	}
	id := res.Metadata.QueueID

	if _, err := client.Approve(ctx, id); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if _, err := client.Reject(ctx, id); api.KindOf(err) != api.KindBackend {
		t.Fatalf("reject approved: %v", err)
	}
	posted, err := client.PostNow(ctx, id)
	if err != nil {
		t.Fatalf("PostNow: %v", err)
	}
	if posted.TweetURL == "" {
		t.Fatalf("ack = %+v", posted)
	}
	if err := client.Delete(ctx, id); api.KindOf(err) != api.KindBackend {
		t.Fatalf("delete posted: %v", err)
	}
	item, err := client.GetItem(ctx, id)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if item.Status != queue.StatusPosted {
		t.Fatalf("status = %s", item.Status)
	}

	_, err = client.GetItem(ctx, "404")
	if api.Message(err) != "Queue item 404 not found" {
		t.Fatalf("message = %q", api.Message(err))
	}
}

func TestUpdateAndDelete(t *testing.T) {
	backend := testsupport.StartBackend(t, testsupport.WithSeed())
	client, _ := backend.NewClient(t, "")
	ctx := context.Background()

	caption := "rewritten"
	res, err := client.UpdateItem(ctx, "1", api.ItemUpdate{Caption: &caption})
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if res.Item == nil || res.Item.Caption != caption {
		t.Fatalf("result = %+v", res)
	}
	if err := client.Delete(ctx, "1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	items, _ := client.ListQueue(ctx)
	if len(items) != 3 {
		t.Fatalf("items = %d", len(items))
	}
}

func TestBoardAgainstBackend(t *testing.T) {
	backend := testsupport.StartBackend(t, testsupport.WithSeed())
	client, _ := backend.NewClient(t, "")
	board := moderation.NewBoard(client, nil)
	ctx := context.Background()

	if _, err := board.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	pending := board.View(queue.ViewPending)
	if len(pending) != 1 {
		t.Fatalf("pending = %+v", pending)
	}
	id := pending[0].ID
	if _, err := board.Approve(ctx, id); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if len(board.View(queue.ViewPending)) != 0 {
		t.Fatal("item should leave the pending view")
	}
	if len(board.View(queue.ViewApproved)) != 2 {
		t.Fatalf("approved = %+v", board.View(queue.ViewApproved))
	}
	if len(board.View(queue.ViewAll)) != 4 {
		t.Fatalf("all = %d", len(board.View(queue.ViewAll)))
	}
}

func TestTokenRequired(t *testing.T) {
	backend := testsupport.StartBackend(t, testsupport.WithBackendToken("secret"))
	ctx := context.Background()

	anonymous, _ := backend.NewClient(t, "")
	if _, err := anonymous.ListQueue(ctx); !api.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	client, _ := backend.NewClient(t, "secret")
	if _, err := client.ListQueue(ctx); err != nil {
		t.Fatalf("ListQueue with token: %v", err)
	}

	resp, err := http.Get(backend.URL + "/health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d", resp.StatusCode)
	}
}

func TestSystemEndpoints(t *testing.T) {
	backend := testsupport.StartBackend(t, testsupport.WithSeed())
	client, _ := backend.NewClient(t, "")
	ctx := context.Background()

	status, err := client.SystemStatus(ctx)
	if err != nil {
		t.Fatalf("SystemStatus: %v", err)
	}
	if !status.Database || status.Whisper || len(status.Reported) != 4 {
		t.Fatalf("status = %+v", status)
	}
	analytics, err := client.Analytics(ctx)
	if err != nil {
		t.Fatalf("Analytics: %v", err)
	}
	if analytics.TotalSubmissions != 4 || analytics.PendingItems != 1 {
		t.Fatalf("analytics = %+v", analytics)
	}
	activity, err := client.Activity(ctx)
	if err != nil {
		t.Fatalf("Activity: %v", err)
	}
	if len(activity) == 0 || activity[0].Time.IsZero() {
		t.Fatalf("activity = %+v", activity)
	}
	settings, err := client.UpdateSettings(ctx, api.Settings{"auto_approve": true})
	if err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	if settings["auto_approve"] != true || settings["default_tone"] != "auto" {
		t.Fatalf("settings = %v", settings)
	}
	tones, err := client.Tones(ctx)
	if err != nil {
		t.Fatalf("Tones: %v", err)
	}
	if len(tones) != len(queue.AllTones()) || tones[0].ID != "auto" {
		t.Fatalf("tones = %+v", tones)
	}
}
