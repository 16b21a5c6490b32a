package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"greencycle/internal/assistant"
	"greencycle/internal/feed"
	"greencycle/internal/pickups"
	"greencycle/internal/rewards"
	"greencycle/internal/storage"
	"greencycle/internal/store"
	"greencycle/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/sirupsen/logrus"
)

var decoder = form.NewDecoder()

type Service struct {
	logger *logrus.Logger
	config *types.Config

	cognitoClient *cognitoidentityprovider.Client
	imageStore    *storage.ImageStore
	assistant     *assistant.Client

	coordinator *pickups.Coordinator
	ledger      *rewards.Ledger
	userRepo    *store.UserRepository

	hub    *feed.Hub
	cookie *securecookie.SecureCookie

	jwksCache *jwk.Cache
	jwksURL   string

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	cognitoClient *cognitoidentityprovider.Client,
	imageStore *storage.ImageStore,
	assistantClient *assistant.Client,
	coordinator *pickups.Coordinator,
	ledger *rewards.Ledger,
	userRepo *store.UserRepository,
	hub *feed.Hub,
	jwkCache *jwk.Cache,
	jwksURL string,
) (*Service, error) {
	mux := flow.New()

	hashKey, _ := base64.StdEncoding.DecodeString(config.CookieHashKey)
	blockKey, _ := base64.StdEncoding.DecodeString(config.CookieBlockKey)

	s := &Service{
		logger: logger,
		config: config,

		cognitoClient: cognitoClient,
		imageStore:    imageStore,
		assistant:     assistantClient,

		coordinator: coordinator,
		ledger:      ledger,
		userRepo:    userRepo,

		hub:    hub,
		cookie: securecookie.New(hashKey, blockKey),

		jwksCache: jwkCache,
		jwksURL:   jwksURL,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	s.buildRouter(mux)

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)

	r.HandleFunc("/auth/register", s.handleRegister, http.MethodPost)
	r.HandleFunc("/auth/login", s.handleLogin, http.MethodPost)
	r.HandleFunc("/auth/logout", s.handleLogout, http.MethodPost)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		r.HandleFunc("/pickups", s.handleSchedulePickup, http.MethodPost)
		r.HandleFunc("/pickups/available", s.handleAvailablePickups, http.MethodGet)
		r.HandleFunc("/pickups/mine", s.handleMyPickups, http.MethodGet)
		r.HandleFunc("/pickups/:pickupID", s.handleGetPickup, http.MethodGet)
		r.HandleFunc("/pickups/:pickupID/accept", s.handleAcceptPickup, http.MethodPost)
		r.HandleFunc("/pickups/:pickupID/verify", s.handleVerifyPickup, http.MethodPost)
		r.HandleFunc("/pickups/:pickupID/image", s.handleUploadPickupImage, http.MethodPost)

		r.HandleFunc("/rewards", s.handleRewardCatalog, http.MethodGet)
		r.HandleFunc("/rewards/:itemID/redeem", s.handleRedeem, http.MethodPost)
		r.HandleFunc("/purchases", s.handlePurchaseHistory, http.MethodGet)

		r.HandleFunc("/profile", s.handleGetProfile, http.MethodGet)
		r.HandleFunc("/profile", s.handleUpdateProfile, http.MethodPatch)

		r.HandleFunc("/assistant", s.handleAssistant, http.MethodPost)

		r.HandleFunc("/feed", s.hub.HandleWS, http.MethodGet)
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
