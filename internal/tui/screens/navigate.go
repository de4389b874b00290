package screens

// NavigateMsg is sent when navigating to a new screen
type NavigateMsg struct {
	Screen string
	Data   interface{} // Optional data to pass to the target screen
}
