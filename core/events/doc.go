// Package events defines the typed session event contract.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - transcript.*
//   - session.*
//
// transcript events
//
//   - UserMessageAppended (transcript.user_message_appended): a user message
//     was added optimistically, before its answer exists.
//   - UserMessageRolledBack (transcript.user_message_rolled_back): the answer
//     failed and the user message was removed by ID.
//   - AssistantMessageAppended (transcript.assistant_message_appended): the
//     answer directly following its user message.
//   - AssistantAudioAttached (transcript.assistant_audio_attached): synthesized
//     audio landed on an answer that is already visible.
//   - TranscriptCleared (transcript.cleared): the transcript was emptied.
//
// session events
//
//   - StatusChanged (session.status_changed): idle, loading, recording or
//     transcribing.
//   - DraftUpdated (session.draft_updated): pending input text changed, either
//     typed or transcribed.
//   - AttachmentStaged (session.attachment_staged): staged file changed.
//   - RecordingStateChanged (session.recording_state_changed): recording
//     sub-session transition.
//   - Notice (session.notice): user-visible failure.
package events
