// Package events defines the typed workflow event contract.
//
// Every signal that reaches the orchestrator from the outside — recognition
// state changes, synthesis signals, the idle-reset timer — is converted into
// one of these values and funnelled through the orchestrator's single
// dispatch point. Event kinds are grouped by emitter-facing namespaces:
//
//   - recognition.*
//   - synthesis.*
//   - workflow.*
//
// recognition events
//
//   - RecognitionListening (recognition.listening): live capture and
//     transcription started.
//   - RecognitionTranscriptPartial (recognition.transcript_partial): mutable
//     interim transcript snapshot; may repeat any number of times.
//   - RecognitionTranscriptFinal (recognition.transcript_final): terminal
//     transcript for the utterance; emitted at most once per start.
//   - RecognitionFailed (recognition.failed): capture or transcription
//     failed; terminal for the utterance.
//
// synthesis events
//
//   - SynthesisSpeakingChanged (synthesis.speaking_changed): playback of the
//     spoken reply started (true) or ended (false).
//   - SynthesisFailed (synthesis.failed): speech generation or playback
//     failed.
//
// workflow events
//
//   - IdleResetElapsed (workflow.idle_reset_elapsed): the grace period after
//     a terminal state ran out.
package events
