package testutil

import (
	"context"
	"sync"

	"github.com/wunderfauks/receiptguard/internal/model"
)

// FakeOCR returns canned text per image content, keyed by a caller-chosen
// function of the bytes. The zero value returns Text for every image.
type FakeOCR struct {
	ByImage map[string]string
	Text    string
	Err     error
}

func (f *FakeOCR) ExtractText(_ context.Context, image []byte) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	if text, ok := f.ByImage[string(image)]; ok {
		return text, nil
	}
	return f.Text, nil
}

// FakeValidator returns a fixed assessment for every receipt.
type FakeValidator struct {
	Assessment model.SemanticAssessment
}

func (f *FakeValidator) Validate(_ context.Context, _, _ string, _ []string) model.SemanticAssessment {
	return f.Assessment
}

// FakeDuplicateIndex is an in-memory duplicate index.
type FakeDuplicateIndex struct {
	Known    map[string]bool
	CheckErr error
	mu       sync.Mutex
}

func NewFakeDuplicateIndex() *FakeDuplicateIndex {
	return &FakeDuplicateIndex{Known: make(map[string]bool)}
}

func (f *FakeDuplicateIndex) CheckDuplicateHash(_ context.Context, hash string) (bool, error) {
	if f.CheckErr != nil {
		return false, f.CheckErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Known[hash], nil
}

func (f *FakeDuplicateIndex) RecordHash(_ context.Context, hash, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Known[hash] = true
	return nil
}

// FakeCampaignSource serves a fixed campaign list.
type FakeCampaignSource struct {
	Campaigns []model.Campaign
	Err       error
}

func (f *FakeCampaignSource) FetchActiveCampaigns(_ context.Context) ([]model.Campaign, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Campaigns, nil
}
