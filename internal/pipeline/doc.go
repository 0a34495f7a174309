// Package pipeline sequences one content invocation: claim the next
// episode in the rotation state, write the episode artifact, render the
// video, and publish it. Each stage records progress in the run ledger,
// and the rotation claim is committed before rendering so a downstream
// failure can never cause the same fact to be reused.
package pipeline
