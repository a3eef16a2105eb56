package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ada-voice-go/internal/config"
	"ada-voice-go/internal/model"
	"ada-voice-go/pkg/opensearch"
)

type fakeResolver struct {
	creds model.Credentials
	err   error
	calls int
}

func (f *fakeResolver) GetIndexCredentials(ctx context.Context, secretID string) (model.Credentials, error) {
	f.calls++
	return f.creds, f.err
}

type fakeIndex struct {
	verifyErr   error
	hits        []model.SearchHit
	searchErr   error
	verifyCalls int
	searchCalls int
	lastVector  []float32
	lastK       int
}

func (f *fakeIndex) VerifyIndex(ctx context.Context) error {
	f.verifyCalls++
	return f.verifyErr
}

func (f *fakeIndex) KnnSearch(ctx context.Context, vector []float32, k int) ([]model.SearchHit, error) {
	f.searchCalls++
	f.lastVector = vector
	f.lastK = k
	return f.hits, f.searchErr
}

type fakeBedrock struct {
	embedding  []float32
	embedErr   error
	answer     string
	genErr     error
	embedCalls int
	prompts    []string
}

func (f *fakeBedrock) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	f.embedCalls++
	return f.embedding, f.embedErr
}

func (f *fakeBedrock) GenerateAnswer(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.answer, f.genErr
}

func newTestRagService(resolver *fakeResolver, index *fakeIndex, llm *fakeBedrock) RagService {
	return NewRagService(resolver, llm, func(creds model.Credentials) (opensearch.Index, error) {
		return index, nil
	}, config.OpenSearchConfig{SecretID: "os-secret"})
}

func TestRagAnswer_UsesTopHitAndQuestion(t *testing.T) {
	resolver := &fakeResolver{creds: model.Credentials{Username: "u", Password: "p"}}
	index := &fakeIndex{
		hits: []model.SearchHit{
			{Score: 0.92, FileName: "about.txt", Passage: "Ada is an assistant."},
			{Score: 0.41, FileName: "other.txt", Passage: "Something unrelated."},
			{Score: 0.12, FileName: "misc.txt", Passage: "Noise."},
		},
	}
	llm := &fakeBedrock{embedding: []float32{0.1, 0.2}, answer: "Arr, I be called Ada!"}

	svc := newTestRagService(resolver, index, llm)
	answer, err := svc.Answer(context.Background(), "What is your name?")
	if err != nil {
		t.Fatalf("answer failed: %v", err)
	}
	if answer != "Arr, I be called Ada!" {
		t.Errorf("unexpected answer: %q", answer)
	}

	if len(llm.prompts) != 1 {
		t.Fatalf("expected exactly one generation call, got %d", len(llm.prompts))
	}
	prompt := llm.prompts[0]
	if !strings.Contains(prompt, "Ada is an assistant.") {
		t.Errorf("prompt does not contain the top hit passage: %q", prompt)
	}
	if !strings.Contains(prompt, "What is your name?") {
		t.Errorf("prompt does not contain the question verbatim: %q", prompt)
	}
	// 仅最高分命中进入上下文
	if strings.Contains(prompt, "Something unrelated.") || strings.Contains(prompt, "Noise.") {
		t.Errorf("prompt contains more than the top hit: %q", prompt)
	}
	if index.lastK != 3 {
		t.Errorf("expected top-k of 3, got %d", index.lastK)
	}
}

func TestRagAnswer_EmptyHitsIsError(t *testing.T) {
	resolver := &fakeResolver{}
	index := &fakeIndex{hits: []model.SearchHit{}}
	llm := &fakeBedrock{embedding: []float32{0.1}}

	svc := newTestRagService(resolver, index, llm)
	_, err := svc.Answer(context.Background(), "anything")
	if !errors.Is(err, ErrNoContext) {
		t.Fatalf("expected ErrNoContext, got %v", err)
	}
	if len(llm.prompts) != 0 {
		t.Errorf("generation must not run without context")
	}
}

func TestRagAnswer_IndexUnavailableShortCircuits(t *testing.T) {
	resolver := &fakeResolver{}
	index := &fakeIndex{verifyErr: opensearch.ErrIndexUnavailable}
	llm := &fakeBedrock{}

	svc := newTestRagService(resolver, index, llm)
	_, err := svc.Answer(context.Background(), "anything")
	if !errors.Is(err, opensearch.ErrIndexUnavailable) {
		t.Fatalf("expected ErrIndexUnavailable, got %v", err)
	}
	if llm.embedCalls != 0 {
		t.Errorf("embedding must not run when the index probe fails")
	}
	if index.searchCalls != 0 {
		t.Errorf("search must not run when the index probe fails")
	}
}

func TestRagAnswer_CredentialFailureShortCircuits(t *testing.T) {
	resolver := &fakeResolver{err: errors.New("access denied")}
	index := &fakeIndex{}
	llm := &fakeBedrock{}

	svc := newTestRagService(resolver, index, llm)
	_, err := svc.Answer(context.Background(), "anything")
	if err == nil {
		t.Fatal("expected an error")
	}
	if index.verifyCalls != 0 {
		t.Errorf("index probe must not run without credentials")
	}
	if llm.embedCalls != 0 {
		t.Errorf("embedding must not run without credentials")
	}
}

func TestRagAnswer_SearchFailure(t *testing.T) {
	resolver := &fakeResolver{}
	index := &fakeIndex{searchErr: errors.New("timeout")}
	llm := &fakeBedrock{embedding: []float32{0.1}}

	svc := newTestRagService(resolver, index, llm)
	_, err := svc.Answer(context.Background(), "anything")
	if err == nil {
		t.Fatal("expected an error")
	}
	if len(llm.prompts) != 0 {
		t.Errorf("generation must not run when retrieval fails")
	}
}

func TestDirectAnswer(t *testing.T) {
	llm := &fakeBedrock{answer: "I don't know."}
	svc := NewDirectService(llm)

	answer, err := svc.Answer(context.Background(), "What is the airspeed of a swallow?")
	if err != nil {
		t.Fatalf("answer failed: %v", err)
	}
	if answer != "I don't know." {
		t.Errorf("unexpected answer: %q", answer)
	}
	if len(llm.prompts) != 1 {
		t.Fatalf("expected exactly one generation call, got %d", len(llm.prompts))
	}
	if !strings.Contains(llm.prompts[0], "What is the airspeed of a swallow?") {
		t.Errorf("prompt does not contain the question: %q", llm.prompts[0])
	}
	if strings.Contains(llm.prompts[0], "<reference>") {
		t.Errorf("direct prompt must not carry a context block: %q", llm.prompts[0])
	}
}
