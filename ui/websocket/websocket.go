package websocket

import (
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	whatsapp "github.com/sayedabdulkarim/message-scheduler/platforms/whatsapp"
)

type client struct {
	userID string
}

// BroadcastMessage is the wire frame pushed to browser clients. Events are
// routed to the connections of a single user; an empty UserID fans out to
// everyone.
type BroadcastMessage struct {
	UserID  string `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
	Result  any    `json:"result,omitempty"`
}

var (
	Clients    = make(map[*websocket.Conn]client)
	Register   = make(chan *websocket.Conn)
	Broadcast  = make(chan BroadcastMessage)
	Unregister = make(chan *websocket.Conn)
)

func handleRegister(conn *websocket.Conn) {
	userID, _ := conn.Locals("user_id").(string)
	Clients[conn] = client{userID: userID}
	logrus.Debugf("[WS] Connection registered for user %s", userID)
}

func handleUnregister(conn *websocket.Conn) {
	delete(Clients, conn)
	logrus.Debug("[WS] Connection unregistered")
}

func broadcastToUser(message BroadcastMessage) {
	marshalMessage, err := json.Marshal(message)
	if err != nil {
		logrus.Errorf("[WS] Marshal error: %v", err)
		return
	}

	for conn, cl := range Clients {
		if message.UserID != "" && cl.userID != message.UserID {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, marshalMessage); err != nil {
			logrus.Errorf("[WS] Write error: %v", err)
			closeConnection(conn)
		}
	}
}

func closeConnection(conn *websocket.Conn) {
	_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
	_ = conn.Close()
	delete(Clients, conn)
}

func RunHub() {
	for {
		select {
		case conn := <-Register:
			handleRegister(conn)

		case conn := <-Unregister:
			handleUnregister(conn)

		case message := <-Broadcast:
			broadcastToUser(message)
		}
	}
}

// Notifier bridges session lifecycle events onto the hub.
type Notifier struct{}

func (Notifier) Notify(userID string, event whatsapp.Event) {
	Broadcast <- BroadcastMessage{
		UserID:  userID,
		Code:    event.Code,
		Message: event.Message,
		Result:  event.Result,
	}
}

func RegisterRoutes(app fiber.Router) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("user_id", c.Get("X-User-ID", c.Query("user_id")))
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})

	app.Get("/ws", websocket.New(func(conn *websocket.Conn) {
		defer func() {
			Unregister <- conn
			_ = conn.Close()
		}()

		Register <- conn

		for {
			messageType, _, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					logrus.Println("read error:", err)
				}
				return
			}
			if messageType != websocket.TextMessage {
				logrus.Println("unsupported message type:", messageType)
			}
		}
	}))
}
