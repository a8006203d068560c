package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/justsurfingit/rfp-manager/internal/models"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	boondSource      = "boond"
	boondHeader      = "X-Jwt-Client-BoondManager"
	importWorkers    = 4
	boondDateLayout  = "2006-01-02T15:04:05-0700"
	boondLocalLayout = "2006-01-02T15:04:05"
)

// Opportunity is the part of a BoondManager opportunity the importer uses.
type Opportunity struct {
	ID          string
	Title       string
	Reference   string
	Description string
	CompanyName string
	Place       string
	State       int
	UpdateDate  time.Time
}

// OpportunitySource lists opportunities from a CRM.
type OpportunitySource interface {
	Opportunities(ctx context.Context) ([]Opportunity, error)
}

type BoondClient struct {
	BaseURL     string
	ClientToken string
	ClientKey   string
	UserToken   string
	HTTP        *http.Client
}

func NewBoondClient(baseURL, clientToken, clientKey, userToken string) *BoondClient {
	return &BoondClient{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		ClientToken: clientToken,
		ClientKey:   clientKey,
		UserToken:   userToken,
		HTTP:        &http.Client{Timeout: 30 * time.Second},
	}
}

// Token signs the client header payload with the client key (HS256).
func (c *BoondClient) Token() (string, error) {
	claims := jwt.MapClaims{
		"clientToken": c.ClientToken,
		"clientKey":   c.ClientKey,
		"userToken":   c.UserToken,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(c.ClientKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign boond token: %w", err)
	}
	return signed, nil
}

type boondResource struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Attributes    json.RawMessage `json:"attributes"`
	Relationships map[string]struct {
		Data *struct {
			ID   string `json:"id"`
			Type string `json:"type"`
		} `json:"data"`
	} `json:"relationships"`
}

type boondOpportunityAttrs struct {
	Title       string `json:"title"`
	Reference   string `json:"reference"`
	Description string `json:"description"`
	Place       string `json:"place"`
	State       int    `json:"state"`
	UpdateDate  string `json:"updateDate"`
}

type boondList struct {
	Data     []boondResource `json:"data"`
	Included []boondResource `json:"included"`
}

func (c *BoondClient) Opportunities(ctx context.Context) ([]Opportunity, error) {
	token, err := c.Token()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/opportunities", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(boondHeader, token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("boond API error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") && !strings.HasPrefix(ct, "application/vnd.api+json") {
		return nil, fmt.Errorf("boond API returned %q instead of JSON", ct)
	}

	var list boondList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("boond JSON decode error: %w", err)
	}
	return list.opportunities()
}

func (l boondList) opportunities() ([]Opportunity, error) {
	companies := make(map[string]string)
	for _, inc := range l.Included {
		if inc.Type != "company" {
			continue
		}
		var attrs struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(inc.Attributes, &attrs); err == nil {
			companies[inc.ID] = attrs.Name
		}
	}

	out := make([]Opportunity, 0, len(l.Data))
	for _, item := range l.Data {
		var attrs boondOpportunityAttrs
		if err := json.Unmarshal(item.Attributes, &attrs); err != nil {
			return nil, fmt.Errorf("opportunity %s: %w", item.ID, err)
		}
		updated, err := parseBoondDate(attrs.UpdateDate)
		if err != nil {
			return nil, fmt.Errorf("opportunity %s: %w", item.ID, err)
		}
		opp := Opportunity{
			ID:          item.ID,
			Title:       attrs.Title,
			Reference:   attrs.Reference,
			Description: attrs.Description,
			Place:       attrs.Place,
			State:       attrs.State,
			UpdateDate:  updated,
		}
		if rel, ok := item.Relationships["company"]; ok && rel.Data != nil {
			opp.CompanyName = companies[rel.Data.ID]
		}
		out = append(out, opp)
	}
	return out, nil
}

func parseBoondDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, boondDateLayout, boondLocalLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized updateDate %q", s)
}

// --- Import ---

type ImportReport struct {
	Fetched int `json:"fetched"`
	Fresh   int `json:"fresh"`
	Created int `json:"created"`
	Linked  int `json:"linked"`
	Skipped int `json:"skipped"`
}

type ImportService struct {
	DB      *gorm.DB
	Source  OpportunitySource
	RFPs    *RFPService
	Skills  *SkillService
	Matcher *MatcherService
	Mail    *MailService
	Since   time.Time
}

func NewImportService(db *gorm.DB, src OpportunitySource, rfps *RFPService, skills *SkillService, matcher *MatcherService, mail *MailService, since time.Time) *ImportService {
	return &ImportService{DB: db, Source: src, RFPs: rfps, Skills: skills, Matcher: matcher, Mail: mail, Since: since}
}

var ErrImportDisabled = errors.New("opportunity import not configured")

// StartWatcher runs Sync now and then every interval until ctx ends.
func (s *ImportService) StartWatcher(ctx context.Context, interval time.Duration) {
	if s == nil || s.Source == nil {
		log.Println("⚠️ Boond importer disabled (no credentials).")
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			s.runCycle(ctx)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

func (s *ImportService) runCycle(ctx context.Context) {
	cycleCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()
	if _, err := s.Sync(cycleCtx); err != nil {
		log.Printf("❌ Boond sync failed: %v", err)
	}
}

// Sync imports opportunities updated after the bookmark and advances it.
func (s *ImportService) Sync(ctx context.Context) (*ImportReport, error) {
	if s == nil || s.Source == nil {
		return nil, ErrImportDisabled
	}
	log.Println("📥 Boond Importer: Starting Sync Cycle...")

	var state models.SyncState
	if err := s.DB.Where(models.SyncState{Source: boondSource}).FirstOrCreate(&state).Error; err != nil {
		return nil, err
	}
	since := state.LastUpdated
	if s.Since.After(since) {
		since = s.Since
	}

	var opps []Opportunity
	err := retry(ctx, 3, time.Second, func() error {
		var e error
		opps, e = s.Source.Opportunities(ctx)
		return e
	})
	if err != nil {
		return nil, err
	}

	report := &ImportReport{Fetched: len(opps)}
	newest := since
	// The bookmark never passes an opportunity that failed, so the next cycle retries it.
	var failedAt time.Time
	fail := func(o Opportunity) {
		if failedAt.IsZero() || o.UpdateDate.Before(failedAt) {
			failedAt = o.UpdateDate
		}
	}
	advance := func(o Opportunity) {
		if o.UpdateDate.After(newest) {
			newest = o.UpdateDate
		}
	}

	var fresh []Opportunity
	for _, o := range opps {
		if !o.UpdateDate.After(since) {
			continue
		}
		var count int64
		if err := s.DB.Model(&models.ProcessedOpportunity{}).Where("id = ?", o.ID).Count(&count).Error; err != nil {
			log.Printf("❌ [Opportunity %s] dedup lookup failed: %v", o.ID, err)
			fail(o)
			continue
		}
		if count > 0 {
			report.Skipped++
			advance(o)
			continue
		}
		fresh = append(fresh, o)
	}
	report.Fresh = len(fresh)

	if len(fresh) == 0 {
		log.Println("✅ No new opportunities found.")
		return report, s.saveBookmark(capBookmark(newest, failedAt), state.LastUpdated)
	}
	log.Printf("📥 Processing %d new opportunities...", len(fresh))

	// Extraction runs concurrently; writes stay sequential.
	proposals := make([]Proposal, len(fresh))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(importWorkers)
	for i, o := range fresh {
		g.Go(func() error {
			proposals[i] = s.Skills.Propose(gctx, o.Description)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, o := range fresh {
		linked, err := s.importOne(ctx, o, proposals[i])
		if err != nil {
			log.Printf("❌ [Opportunity %s] import failed: %v", o.ID, err)
			fail(o)
			continue
		}
		if linked {
			report.Linked++
		} else {
			report.Created++
		}
		advance(o)
		if err := s.DB.Create(&models.ProcessedOpportunity{ID: o.ID}).Error; err != nil {
			log.Printf("⚠️ [Opportunity %s] not marked as processed: %v", o.ID, err)
		}
	}

	newest = capBookmark(newest, failedAt)
	if err := s.saveBookmark(newest, state.LastUpdated); err != nil {
		return report, err
	}
	log.Printf("🔖 Boond bookmark at %s (created %d, linked %d)", newest.Format(time.RFC3339), report.Created, report.Linked)
	return report, nil
}

// capBookmark keeps the bookmark just below the earliest failed opportunity.
// One microsecond is the finest step postgres timestamps keep.
func capBookmark(newest, failedAt time.Time) time.Time {
	if failedAt.IsZero() || newest.Before(failedAt) {
		return newest
	}
	return failedAt.Add(-time.Microsecond)
}

func (s *ImportService) importOne(ctx context.Context, o Opportunity, p Proposal) (bool, error) {
	logPrefix := fmt.Sprintf("[Opportunity %s]", o.ID)

	if s.Matcher != nil {
		if existing := s.Matcher.FindOpenRFP(o.CompanyName, o.Title); existing != nil {
			err := s.DB.Model(existing).Update("external_id", o.ID).Error
			if err != nil {
				return false, err
			}
			s.RFPs.LogEvent(existing.ID, EventImported, "Linked to BoondManager opportunity "+o.ID)
			log.Printf("%s 🔗 Linked to existing RFP %s", logPrefix, existing.ID)
			return true, nil
		}
	}

	rfp := &models.RFP{
		Role:           o.Title,
		CompanyName:    o.CompanyName,
		CompanyCity:    o.Place,
		JobDescription: o.Description,
		Skills:         p.Skills,
		Languages:      p.Languages,
		Status:         models.StatusOpen,
		Source:         models.SourceBoond,
		ExternalID:     o.ID,
	}
	if rfp.Role == "" {
		rfp.Role = o.Reference
	}
	if err := s.RFPs.Insert(rfp); err != nil {
		return false, err
	}
	log.Printf("%s ✅ Created RFP %s with %d skills, %d languages", logPrefix, rfp.ID, len(rfp.Skills), len(rfp.Languages))
	s.Mail.NotifyRFPCreated(ctx, rfp)
	return false, nil
}

func (s *ImportService) saveBookmark(newest, previous time.Time) error {
	if !newest.After(previous) {
		return nil
	}
	return s.DB.Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&models.SyncState{Source: boondSource, LastUpdated: newest}).Error
}
