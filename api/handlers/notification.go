package handlers

import (
	"net/http"
	"os"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	templates "github.com/ecotrack/waste-report-api/templates/html"
)

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// NotificationHub stores connected users (userId -> *websocket.Conn)
type NotificationHub struct {
	clients map[string]*websocket.Conn
	mutex   sync.Mutex
}

var hub = &NotificationHub{
	clients: make(map[string]*websocket.Conn),
}

// HandleNotificationsWebSocket is the WebSocket handler for the live report
// status feed
func HandleNotificationsWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Errorw("websocket upgrade error", "error", err)
		return
	}

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		conn.Close()
		return
	}

	hub.mutex.Lock()
	hub.clients[userID] = conn
	hub.mutex.Unlock()
	zap.S().Debugf("user %s connected to /ws/notifications", userID)

	conn.SetCloseHandler(func(code int, text string) error {
		hub.mutex.Lock()
		delete(hub.clients, userID)
		hub.mutex.Unlock()
		zap.S().Debugf("user %s disconnected from /ws/notifications", userID)
		return nil
	})

	// Keep connection alive
	for {
		if _, _, err := conn.NextReader(); err != nil {
			conn.Close()
			break
		}
	}
}

// sendNotificationToUser pushes an event to a single connected user, if any
func sendNotificationToUser(userID string, notification interface{}) {
	hub.mutex.Lock()
	conn, exists := hub.clients[userID]
	hub.mutex.Unlock()

	if exists {
		err := conn.WriteJSON(map[string]interface{}{
			"event": "new_notification",
			"data":  notification,
		})
		if err != nil {
			zap.S().Errorw("error sending notification", "userId", userID, "error", err)
			hub.mutex.Lock()
			delete(hub.clients, userID)
			hub.mutex.Unlock()
			conn.Close()
		}
	}
}

// broadcastReportEvent pushes a report status event to every connected
// client, used by the dispatch board
func broadcastReportEvent(eventType string, data map[string]interface{}) {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	for userID, conn := range hub.clients {
		err := conn.WriteJSON(map[string]interface{}{
			"event": eventType,
			"data":  data,
		})
		if err != nil {
			zap.S().Errorw("error broadcasting report event", "userId", userID, "error", err)
			delete(hub.clients, userID)
			conn.Close()
		}
	}
}

// notifyStatusChange fans out a status change to the live feed, the
// citizen's push token and their email. Called in a goroutine by the
// lifecycle handlers; failures are logged and never affect the triggering
// operation.
func notifyStatusChange(reportID, citizenID, citizenEmail, pushToken, status, message string) {
	broadcastReportEvent("report_status_changed", map[string]interface{}{
		"reportId": reportID,
		"status":   status,
	})
	sendNotificationToUser(citizenID, map[string]interface{}{
		"reportId": reportID,
		"status":   status,
		"message":  message,
	})
	if pushToken != "" {
		_ = SendExpoPushNotifications([]string{pushToken}, "Waste report update", message, map[string]interface{}{
			"reportId": reportID,
			"status":   status,
		})
	}
	if citizenEmail != "" {
		if err := sendStatusEmail(citizenEmail, reportID, message); err != nil {
			zap.S().Errorw("failed to send status email",
				"reportId", reportID,
				"error", err)
		}
	}
}

// sendStatusEmail delivers a report status update via sendgrid
func sendStatusEmail(toEmail, reportID, message string) error {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	if apiKey == "" {
		zap.S().Debug("SENDGRID_API_KEY not set, skipping status email")
		return nil
	}

	from := mail.NewEmail("EcoTrack", os.Getenv("SENDGRID_FROM_EMAIL"))
	to := mail.NewEmail("", toEmail)
	subject := "Update on your waste report " + reportID
	htmlContent := templates.RenderGenericEmail(subject, message)
	m := mail.NewSingleEmail(from, subject, to, message, htmlContent)

	client := sendgrid.NewSendClient(apiKey)
	_, err := client.Send(m)
	return err
}
