package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Supabase talks to a Supabase project through its PostgREST endpoint.
// One attempt per call, no retry policy; a failed call is reported once
// and retried manually by the user.
type Supabase struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
}

// NewSupabase constructs a client for the given project URL and anon key.
func NewSupabase(baseURL, anonKey string) *Supabase {
	return &Supabase{
		baseURL: baseURL,
		anonKey: anonKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (s *Supabase) do(ctx context.Context, method, path string, body any) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, 0, err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, fmt.Sprintf("%s/rest/v1/%s", s.baseURL, path), reader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("apikey", s.anonKey)
	req.Header.Set("Authorization", "Bearer "+s.anonKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	if resp.StatusCode >= 400 {
		if resp.StatusCode == http.StatusConflict {
			return nil, resp.StatusCode, ErrDuplicate
		}
		return nil, resp.StatusCode, fmt.Errorf("supabase returned status %d", resp.StatusCode)
	}
	return data, resp.StatusCode, nil
}

// Select lists all records of a table.
func (s *Supabase) Select(ctx context.Context, table string) ([]Record, error) {
	data, _, err := s.do(ctx, http.MethodGet, table+"?select=*", nil)
	if err != nil {
		return nil, err
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s rows: %w", table, err)
	}
	return records, nil
}

// Insert adds a record and returns the stored representation.
func (s *Supabase) Insert(ctx context.Context, table string, record Record) (Record, error) {
	data, _, err := s.do(ctx, http.MethodPost, table, []Record{record})
	if err != nil {
		return nil, err
	}
	return firstOf(data, table)
}

// Update patches the record matching id and returns the stored representation.
func (s *Supabase) Update(ctx context.Context, table string, id string, fields Record) (Record, error) {
	data, _, err := s.do(ctx, http.MethodPatch, table+"?id=eq."+url.QueryEscape(id), fields)
	if err != nil {
		return nil, err
	}
	return firstOf(data, table)
}

// Delete removes the record matching id.
func (s *Supabase) Delete(ctx context.Context, table string, id string) error {
	data, _, err := s.do(ctx, http.MethodDelete, table+"?id=eq."+url.QueryEscape(id), nil)
	if err != nil {
		return err
	}
	if _, err := firstOf(data, table); err != nil {
		return err
	}
	return nil
}

// firstOf unwraps PostgREST's representation array; an empty array means
// the filter matched no rows.
func firstOf(data []byte, table string) (Record, error) {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s representation: %w", table, err)
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	return records[0], nil
}
