// Command chat is a terminal symptom chat. It sends the conversation to the
// gateway and falls back to local triage advice when the gateway fails.
//
// Usage:
//
//	# Chat against a local gateway
//	chat --gateway http://localhost:8080/functions/v1/ai-doctor
//
//	# Keep transcripts and list them later
//	chat --db chat.db
//	chat history --db chat.db
//	chat history --db chat.db <conversation-id>
package main

func main() {
	Execute()
}
