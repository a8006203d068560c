package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/justsurfingit/rfp-manager/internal/auth"
	"github.com/justsurfingit/rfp-manager/internal/config"
	"github.com/justsurfingit/rfp-manager/internal/database"
	"github.com/justsurfingit/rfp-manager/internal/dtos"
	"github.com/justsurfingit/rfp-manager/internal/extraction"
	"github.com/justsurfingit/rfp-manager/internal/handlers"
	"github.com/justsurfingit/rfp-manager/internal/services"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	// 2. Database Connection
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}

	if err := dtos.RegisterValidators(); err != nil {
		log.Fatal(err)
	}

	// 3. Skill extraction. A broken taxonomy stops the service; a missing
	// matcher only disables the feature.
	matcher, err := services.LoadMatcher(cfg.TaxonomyPath, cfg.FrequencyHintsPath)
	var dfe *extraction.DataFormatError
	switch {
	case errors.As(err, &dfe):
		log.Fatalf("❌ Taxonomy is malformed: %v", err)
	case err != nil:
		log.Printf("⚠️  Skill extraction disabled: %v", err)
	}
	skillService := services.NewSkillService(matcher, services.SkillSettings{
		TaxonomyPath: cfg.TaxonomyPath,
		HintsPath:    cfg.FrequencyHintsPath,
		Threshold:    cfg.AnnotationThreshold,
		Timeout:      cfg.ExtractionTimeout,
	})

	// 4. Core services
	rfpService := services.NewRFPService(db)
	matcherService := services.NewMatcherService(db)
	mailService := services.NewMailService(newMailer(ctx, cfg), rfpService, cfg.NotifyTo)

	var llmService *services.LLMService
	if cfg.GeminiAPIKey != "" {
		if llmService, err = services.NewLLMService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel); err != nil {
			log.Printf("⚠️  LLM drafting disabled: %v", err)
		}
	} else {
		log.Println("⚠️  LLM drafting disabled (GEMINI_API_KEY not set).")
	}

	// 5. Boond importer
	var source services.OpportunitySource
	if cfg.Boond.Enabled() {
		source = services.NewBoondClient(cfg.Boond.BaseURL, cfg.Boond.ClientToken, cfg.Boond.ClientKey, cfg.Boond.UserToken)
	}
	importService := services.NewImportService(db, source, rfpService, skillService, matcherService, mailService, cfg.Boond.Since)
	importService.StartWatcher(ctx, cfg.Boond.Interval)

	// 6. Handlers & Router
	router := &handlers.Router{
		RFP:         handlers.NewRFPHandler(rfpService, skillService, mailService, llmService),
		Skill:       handlers.NewSkillHandler(skillService),
		Mail:        handlers.NewMailHandler(mailService),
		Import:      handlers.NewImportHandler(importService),
		CORSOrigins: cfg.CORSOrigins,
	}

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router.Engine()}
	go func() {
		log.Printf("🚀 Server starting on port %s...", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start:", err)
		}
	}()

	<-ctx.Done()
	log.Println("🛑 Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️  Forced shutdown: %v", err)
	}
}

// newMailer returns the configured provider, or nil when mail is off.
func newMailer(ctx context.Context, cfg *config.Config) services.Mailer {
	switch cfg.MailProvider {
	case config.MailProviderGraph:
		client, err := auth.GraphClient(ctx, cfg.Graph.Authority, cfg.Graph.TenantID, cfg.Graph.ClientID, cfg.Graph.ClientSecret)
		if err != nil {
			log.Printf("⚠️  Graph mailer disabled: %v", err)
			return nil
		}
		log.Printf("✅ Mail via Microsoft Graph as %s", cfg.Graph.Mailbox)
		return services.NewGraphMailer(client, cfg.Graph.BaseURL, cfg.Graph.Mailbox)

	case config.MailProviderGmail:
		log.Println("Initializing Gmail Client...")
		client, err := auth.GmailClient(ctx, cfg.Gmail.CredentialsFile, cfg.Gmail.TokenFile)
		if err != nil {
			log.Printf("⚠️  Gmail mailer disabled: %v", err)
			return nil
		}
		gmailService, err := gmail.NewService(ctx, option.WithHTTPClient(client))
		if err != nil {
			log.Printf("⚠️  Failed to create Gmail Service: %v", err)
			return nil
		}
		log.Println("✅ Gmail Service connected successfully.")
		return services.NewGmailMailer(gmailService)

	default:
		log.Println("⚠️  Mail disabled (MAIL_PROVIDER=none).")
		return nil
	}
}
