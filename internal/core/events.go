package core

// Inbound event types.
const (
	EventRegister   = "register"
	EventRegisterID = "register-id"
	EventCallUser   = "call-user"
	EventAnswerCall = "answer-call"
	EventRejectCall = "reject-call"
	EventEndCall    = "end-call"
	EventCreateRoom = "create-room"
	EventJoinRoom   = "join-room"
	EventLeaveRoom  = "leave-room"
	EventGetUsers   = "get-users"
	EventGetRooms   = "get-rooms"
	EventWhoAmI     = "whoami"
	EventPing       = "ping"
)

// Outbound event types.
const (
	EventYourID            = "your-id"
	EventRegistered        = "registered"
	EventIDRegistered      = "id-registered"
	EventRegistrationError = "registration-error"
	EventUsersUpdated      = "users-updated"
	EventUserUnregistered  = "user-unregistered"
	EventUserDisconnected  = "user-disconnected"
	EventCallMade          = "call-made"
	EventCallAnswered      = "call-answered"
	EventCallRejected      = "call-rejected"
	EventCallEnded         = "call-ended"
	EventCallError         = "call-error"
	EventUserNotFound      = "user-not-found"
	EventRoomCreated       = "room-created"
	EventRoomUpdated       = "room-updated"
	EventRoomsUpdated      = "rooms-updated"
	EventRoomError         = "room-error"
	EventPong              = "pong"
	EventError             = "error"
)
