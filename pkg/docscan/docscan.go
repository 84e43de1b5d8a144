package docscan

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"ProjectOCR/internal/entity"
	"github.com/gorilla/websocket"
)

var (
	// ErrCancelled is returned when the user dismissed the scanner.
	ErrCancelled = errors.New("scan cancelled by user")
	// ErrUnavailable is returned when no scanner bridge is reachable or the
	// device lacks the capability.
	ErrUnavailable = errors.New("document scanner unavailable")
)

type ScanOptions struct {
	EnableGalleryImport bool               `json:"enableGalleryImport"`
	ScannerMode         entity.ScannerMode `json:"scannerMode"`
}

// IDocScan drives the remote document-scanner bridge on the host device.
// OpenScanner blocks until the user finishes or cancels the scan session.
type IDocScan interface {
	OpenScanner(opts ScanOptions) (*entity.DocumentScanResult, error)
	IsConnected() bool
	Reconnect() error
	CloseConnection()
}

// scanReply is the bridge wire format. Status distinguishes a completed scan
// from a user cancel and a capability failure.
type scanReply struct {
	Status string                    `json:"status"`
	Result entity.DocumentScanResult `json:"result"`
	Error  string                    `json:"error,omitempty"`
}

type docscanClient struct {
	conn         *websocket.Conn
	mu           sync.Mutex
	writeTimeout time.Duration
	scanTimeout  time.Duration
}

func NewScannerClient() IDocScan {
	client := &docscanClient{
		writeTimeout: 5 * time.Second,
		// Scan sessions wait on a human pointing a camera.
		scanTimeout: 5 * time.Minute,
	}

	go func() {
		if err := client.Reconnect(); err != nil {
			log.Printf("Initial connection to scanner bridge failed: %v. Will retry on demand.", err)
		} else {
			log.Printf("Successfully connected to scanner bridge")
		}
	}()

	return client
}

func (c *docscanClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

func (c *docscanClient) Reconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}

	url := os.Getenv("DOCSCAN_WS_URL")
	if url == "" {
		return fmt.Errorf("URL for scanner bridge not configured")
	}

	dialer := websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", url, err)
	}

	conn.SetPingHandler(func(appData string) error {
		err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(c.writeTimeout))
		if err != nil {
			log.Printf("Error sending pong: %v", err)
		}
		return nil
	})

	c.conn = conn

	return nil
}

func (c *docscanClient) CloseConnection() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *docscanClient) OpenScanner(opts ScanOptions) (*entity.DocumentScanResult, error) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		if err := c.Reconnect(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		c.mu.Lock()
		conn = c.conn
		c.mu.Unlock()
	}

	c.mu.Lock()

	conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))

	if err := conn.WriteJSON(opts); err != nil {
		c.conn = nil
		conn.Close()
		c.mu.Unlock()
		return nil, fmt.Errorf("error requesting scan session: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(c.scanTimeout))

	c.mu.Unlock()

	_, message, err := conn.ReadMessage()
	if err != nil {
		c.mu.Lock()
		c.conn = nil
		conn.Close()
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	c.mu.Lock()
	conn.SetReadDeadline(time.Time{})
	conn.SetWriteDeadline(time.Time{})
	c.mu.Unlock()

	var reply scanReply
	if err := json.Unmarshal(message, &reply); err != nil {
		return nil, fmt.Errorf("error unmarshaling scan result: %w", err)
	}

	switch reply.Status {
	case "completed":
		return &reply.Result, nil
	case "cancelled":
		return nil, ErrCancelled
	case "unavailable":
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, reply.Error)
	default:
		return nil, fmt.Errorf("unexpected scanner status %q: %s", reply.Status, reply.Error)
	}
}
