package pubsub

// Topics carried on the in-process bus.
const (
	// TopicTeamActivity carries activity events published by the REST
	// handlers; the activity subscriber persists them as team log rows.
	TopicTeamActivity = "team.activity"

	// TopicChatConnected and TopicChatDisconnected mark chat socket
	// lifecycle; the presence tracker consumes them to keep a live count
	// of connected sessions.
	TopicChatConnected    = "system.chat.connected"
	TopicChatDisconnected = "system.chat.disconnected"
)
