package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"studio-storefront/app/controller"
	"studio-storefront/app/router"
	"studio-storefront/config"
	"studio-storefront/db"
	"studio-storefront/pricing"
	"studio-storefront/repository"
	"studio-storefront/service"
)

const cartJanitorInterval = 10 * time.Minute

// Initialize initializes the application and registers its routes on mux.
// Background workers (settings watch, cart janitor) stop when ctx is done.
func Initialize(ctx context.Context, cfg *config.Config, mux *http.ServeMux) error {
	// Initialize database connection
	if cfg.DBDriver == "sqlite" {
		if err := db.Open("sqlite", cfg.DBPath); err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
	} else if err := db.InitDB(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		return err
	}

	// Initialize repositories
	catalogRepo := repository.NewCatalogRepository()
	ruleRepo := repository.NewRuleRepository()
	settingsRepo := repository.NewSettingsRepository()
	leadRepo := repository.NewLeadRepository()

	if cfg.SettingsSeed != "" {
		seed, err := pricing.LoadSettingsFile(cfg.SettingsSeed)
		if err != nil {
			return fmt.Errorf("failed to read settings seed: %w", err)
		}
		if err := service.ImportSettings(ctx, seed, catalogRepo, ruleRepo, settingsRepo); err != nil {
			return err
		}
	}

	// Settings provider: file when configured, database otherwise
	var source service.SettingsSource = service.NewDBSettingsSource(catalogRepo, ruleRepo, settingsRepo)
	if cfg.SettingsFile != "" {
		source = service.NewFileSettingsSource(cfg.SettingsFile)
	}

	engine := pricing.NewEngine(nil)
	settingsService := service.NewSettingsService(source, engine)
	if _, _, err := settingsService.Sync(ctx); err != nil {
		log.Printf("⚠️ Initialize: starting with an empty catalog: %v", err)
	}
	go settingsService.Watch(ctx, cfg.SettingsRefresh)

	cartService := service.NewCartService(engine, cfg.CartTTL, nil)
	go cartService.StartJanitor(ctx, cartJanitorInterval)

	// Initialize Drive service (optional)
	var driveService service.DriveServiceInterface
	if cfg.DriveEnabled() {
		ds, err := service.NewDriveService(ctx, cfg.GoogleCredentials, cfg.DriveFolderID)
		if err != nil {
			log.Printf("⚠️ Initialize: quote sharing disabled: %v", err)
		} else {
			driveService = ds
		}
	} else {
		log.Printf("⚠️ Initialize: GOOGLE_APPLICATION_CREDENTIALS or DRIVE_FOLDER_ID not set, quote sharing disabled")
	}

	whatsappNumber := cfg.Studio.WhatsApp
	if whatsappNumber == "" {
		whatsappNumber = cfg.Studio.Phone
	}
	whatsappService := service.NewWhatsAppService(cfg.Studio.Name, whatsappNumber)
	quoteService := service.NewQuoteService(cfg.Studio, cfg.BaseURL, cfg.LogoPath, cfg.ChromePath)
	leadService := service.NewLeadService(leadRepo, quoteService, driveService, whatsappService, cfg.BaseURL)
	checkoutService := service.NewCheckoutService(cartService, leadRepo, whatsappService, cfg.BaseURL, nil)

	// Create controllers
	controllers := &router.Controllers{
		Catalog:  controller.NewCatalogController(cartService),
		Cart:     controller.NewCartController(cartService, checkoutService),
		Quote:    controller.NewQuoteController(leadService),
		Lead:     controller.NewLeadController(leadService),
		Settings: controller.NewSettingsController(settingsService),
	}

	// Setup routes using standard http router
	router.SetupRoutes(mux, controllers)

	return nil
}
