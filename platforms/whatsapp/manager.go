package whatsapp

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	globalConfig "github.com/sayedabdulkarim/message-scheduler/config"
	"github.com/sayedabdulkarim/message-scheduler/pkg/crypto"
	"github.com/sayedabdulkarim/message-scheduler/scheduler/domain/common"
	"github.com/sayedabdulkarim/message-scheduler/scheduler/domain/platform"
	"github.com/sayedabdulkarim/message-scheduler/scheduler/repository"
	"github.com/sirupsen/logrus"
	qrcode "github.com/skip2/go-qrcode"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
)

// session is one user's live WhatsApp client handle.
type session struct {
	userID    string
	client    *whatsmeow.Client
	container *sqlstore.Container
	handlerID uint32
}

// Status is the session state exposed to collaborators.
type Status struct {
	IsConnected    bool   `json:"is_connected"`
	IsClientActive bool   `json:"is_client_active"`
	PhoneNumber    string `json:"phone_number,omitempty"`
}

// Manager owns the per-user WhatsApp client lifecycle: QR pairing, ready and
// disconnect transitions, and the persisted verification flag. The registry
// and the stored flag mutate under the same lock, so a verified connection
// always has a live handle at the moment the flag flips true.
type Manager struct {
	store    repository.IStore
	notifier Notifier

	mu       sync.Mutex
	sessions map[string]*session
}

func NewManager(store repository.IStore, notifier Notifier) *Manager {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Manager{
		store:    store,
		notifier: notifier,
		sessions: make(map[string]*session),
	}
}

// Connect starts a pairing session for the user. At most one live session
// exists per user; a second request while connecting or connected is
// rejected. QR codes are pushed to the user's live connection as PNG data
// URLs until the client reports ready.
func (m *Manager) Connect(ctx context.Context, userID string) error {
	m.mu.Lock()
	if _, exists := m.sessions[userID]; exists {
		m.mu.Unlock()
		return common.ErrAlreadyConnected
	}
	sess := &session{userID: userID}
	m.sessions[userID] = sess
	m.mu.Unlock()

	if err := m.startSession(ctx, sess); err != nil {
		m.mu.Lock()
		delete(m.sessions, userID)
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *Manager) startSession(ctx context.Context, sess *session) error {
	if err := os.MkdirAll(globalConfig.PathStorages, 0755); err != nil {
		return fmt.Errorf("failed to create storage dir: %w", err)
	}

	dbPath := fmt.Sprintf("%s/whatsapp-%s.db?_foreign_keys=on", globalConfig.PathStorages, sess.userID)
	dbLog := waLog.Stdout("WA-DB", globalConfig.WhatsappLogLevel, true)

	container, err := sqlstore.New(ctx, "sqlite3", "file:"+dbPath, dbLog)
	if err != nil {
		return fmt.Errorf("failed to init whatsapp session db: %w", err)
	}
	sess.container = container

	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		return fmt.Errorf("failed to get device: %w", err)
	}
	if device == nil {
		device = container.NewDevice()
	}

	clientLog := waLog.Stdout("WA-Client", globalConfig.WhatsappLogLevel, true)
	sess.client = whatsmeow.NewClient(device, clientLog)
	sess.client.EnableAutoReconnect = true
	sess.client.AutoTrustIdentity = true
	sess.handlerID = sess.client.AddEventHandler(func(evt interface{}) {
		m.handleEvent(sess.userID, evt)
	})

	if sess.client.Store.ID == nil {
		qrChan, err := sess.client.GetQRChannel(ctx)
		if err != nil && !errors.Is(err, whatsmeow.ErrQRStoreContainsID) {
			return fmt.Errorf("failed to get qr channel: %w", err)
		}
		if qrChan != nil {
			go m.pushQRCodes(sess.userID, qrChan)
		}
	}

	if err := sess.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect whatsapp client: %w", err)
	}
	return nil
}

func (m *Manager) pushQRCodes(userID string, qrChan <-chan whatsmeow.QRChannelItem) {
	for evt := range qrChan {
		if evt.Event != "code" {
			logrus.Debugf("[WHATSAPP] QR channel event for %s: %s", userID, evt.Event)
			continue
		}
		png, err := qrcode.Encode(evt.Code, qrcode.Medium, 512)
		if err != nil {
			logrus.WithError(err).Error("[WHATSAPP] Failed to render QR image")
			continue
		}
		dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
		m.notifier.Notify(userID, Event{
			Code:    EventQR,
			Message: "Scan QR code",
			Result:  map[string]string{"qr": dataURL},
		})
	}
}

func (m *Manager) handleEvent(userID string, evt interface{}) {
	switch evt.(type) {
	case *events.Connected:
		m.handleReady(userID)
	case *events.LoggedOut:
		m.handleDropped(userID)
	case *events.Disconnected:
		// whatsmeow auto-reconnects on transient drops; only a terminal
		// logout tears the session down.
		logrus.Debugf("[WHATSAPP] Transient disconnect for user %s", userID)
	}
}

// handleReady persists the verified connection once the client is logged in.
func (m *Manager) handleReady(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[userID]
	if !ok || sess.client == nil || sess.client.Store.ID == nil {
		return
	}
	phone := sess.client.Store.ID.User

	sessionData, err := crypto.EncryptSessionData(sess.client.Store.ID.String())
	if err != nil {
		logrus.WithError(err).Warn("[WHATSAPP] Failed to encrypt session data")
		sessionData = ""
	}

	now := time.Now().UTC()
	conn := platform.Connection{
		UserID:      userID,
		Type:        platform.TypeWhatsApp,
		Verified:    true,
		PhoneNumber: phone,
		SessionData: sessionData,
		ConnectedAt: &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := m.store.UpsertConnection(context.Background(), conn); err != nil {
		logrus.WithError(err).Errorf("[WHATSAPP] Failed to persist connection for user %s", userID)
		return
	}

	logrus.Infof("[WHATSAPP] User %s connected as %s", userID, phone)
	m.notifier.Notify(userID, Event{
		Code:   EventReady,
		Result: map[string]string{"phone_number": phone},
	})
}

// handleDropped releases the client handle and unverifies the stored
// connection in the same step.
func (m *Manager) handleDropped(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[userID]
	if ok {
		if sess.client != nil && sess.handlerID != 0 {
			sess.client.RemoveEventHandler(sess.handlerID)
		}
		delete(m.sessions, userID)
	}
	if err := m.store.SetConnectionVerified(context.Background(), userID, platform.TypeWhatsApp, false); err != nil {
		logrus.WithError(err).Errorf("[WHATSAPP] Failed to unverify connection for user %s", userID)
	}

	logrus.Infof("[WHATSAPP] User %s disconnected", userID)
	m.notifier.Notify(userID, Event{Code: EventDisconnected})
}

// Disconnect tears down the user's session on request. Unlike a network
// drop, an explicit disconnect also logs out and clears the stored session
// blob.
func (m *Manager) Disconnect(ctx context.Context, userID string) error {
	m.mu.Lock()
	sess, ok := m.sessions[userID]
	if ok {
		delete(m.sessions, userID)
	}
	m.mu.Unlock()

	if ok && sess.client != nil {
		if sess.handlerID != 0 {
			sess.client.RemoveEventHandler(sess.handlerID)
		}
		if err := sess.client.Logout(ctx); err != nil {
			logrus.Debugf("[WHATSAPP] Logout for user %s: %v", userID, err)
		}
		sess.client.Disconnect()
	}

	if err := m.store.SetConnectionVerified(ctx, userID, platform.TypeWhatsApp, false); err != nil {
		return err
	}
	if err := m.store.ClearConnectionSession(ctx, userID, platform.TypeWhatsApp); err != nil {
		return err
	}

	m.notifier.Notify(userID, Event{Code: EventDisconnected})
	return nil
}

// Status reports the session state: the persisted verified flag plus
// whether a live client handle exists right now.
func (m *Manager) Status(ctx context.Context, userID string) (Status, error) {
	m.mu.Lock()
	_, active := m.sessions[userID]
	m.mu.Unlock()

	conn, err := m.store.GetConnectionByUserAndType(ctx, userID, platform.TypeWhatsApp)
	if err != nil {
		if errors.Is(err, common.ErrConnectionNotFound) {
			return Status{IsClientActive: active}, nil
		}
		return Status{}, err
	}
	return Status{
		IsConnected:    conn.Verified,
		IsClientActive: active,
		PhoneNumber:    conn.PhoneNumber,
	}, nil
}

// Client returns the live client handle for a user, if any.
func (m *Manager) Client(userID string) (*whatsmeow.Client, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[userID]
	if !ok || sess.client == nil {
		return nil, false
	}
	return sess.client, true
}

// Restore reconnects sessions for users whose connection was verified when
// the process last stopped. whatsmeow re-authenticates from its own session
// store, so no QR round trip is needed. Errors are logged and skipped; a
// user whose session cannot be restored simply shows up as not connected.
func (m *Manager) Restore(ctx context.Context, userIDs []string) {
	for _, userID := range userIDs {
		if err := m.Connect(ctx, userID); err != nil {
			logrus.WithError(err).Warnf("[WHATSAPP] Could not restore session for user %s", userID)
		}
	}
}
