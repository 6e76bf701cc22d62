package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/Veraticus/deductible/internal/common"
	"github.com/Veraticus/deductible/internal/model"
	"github.com/Veraticus/deductible/internal/reference"
)

func TestValidateContext(t *testing.T) {
	tests := []struct {
		ctx     context.Context
		name    string
		wantErr bool
	}{
		{
			name:    "valid context",
			ctx:     context.Background(),
			wantErr: false,
		},
		{
			name:    "nil context",
			ctx:     nil,
			wantErr: true,
		},
		{
			name: "canceled context still valid",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			}(),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateContext(tt.ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateContext() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateString(t *testing.T) {
	tests := []struct {
		name    string
		str     string
		wantErr bool
	}{
		{name: "valid string", str: "test"},
		{name: "empty string", str: "", wantErr: true},
		{name: "whitespace only", str: "  \t\n", wantErr: true},
		{name: "padded string", str: "  user  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateString(tt.str, "param")
			if (err != nil) != tt.wantErr {
				t.Errorf("validateString() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrEmptyString) {
				t.Errorf("validateString() error = %v, want ErrEmptyString", err)
			}
		})
	}
}

func TestValidateCategory(t *testing.T) {
	tests := []struct {
		want     error
		name     string
		category string
	}{
		{name: "known category", category: reference.CategoryMeals},
		{name: "empty", category: "", want: ErrEmptyString},
		{name: "industry-only category", category: reference.CategoryPersonal, want: common.ErrUnknownCategory},
		{name: "case matters", category: "home office expenses", want: common.ErrUnknownCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCategory(tt.category)
			if tt.want == nil {
				if err != nil {
					t.Errorf("validateCategory() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("validateCategory() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestValidateResults(t *testing.T) {
	valid := model.ProcessedTransaction{
		Transaction: model.Transaction{ID: "txn-1", Description: "UBER TRIP"},
	}

	tests := []struct {
		want    error
		name    string
		results []model.ProcessedTransaction
	}{
		{name: "valid batch", results: []model.ProcessedTransaction{valid}},
		{name: "nil batch", results: nil, want: ErrEmptySlice},
		{name: "empty batch", results: []model.ProcessedTransaction{}, want: ErrEmptySlice},
		{
			name:    "missing ID",
			results: []model.ProcessedTransaction{valid, {Transaction: model.Transaction{Description: "X"}}},
			want:    ErrInvalidResult,
		},
		{
			name:    "missing description",
			results: []model.ProcessedTransaction{{Transaction: model.Transaction{ID: "txn-2"}}},
			want:    ErrInvalidResult,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResults(tt.results)
			if tt.want == nil {
				if err != nil {
					t.Errorf("validateResults() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("validateResults() error = %v, want %v", err, tt.want)
			}
		})
	}
}
