package deepgram

type deepgramVoice string

const (
	VoiceAgathe  deepgramVoice = "aura-2-agathe-fr"
	VoiceHector  deepgramVoice = "aura-2-hector-fr"
	VoiceThalia  deepgramVoice = "aura-2-thalia-en"
	VoiceAsteria deepgramVoice = "aura-asteria-en"
	VoiceOrion   deepgramVoice = "aura-orion-en"

	defaultVoice = VoiceAgathe
)

func GetAvailableVoices() []deepgramVoice {
	return []deepgramVoice{VoiceAgathe, VoiceHector, VoiceThalia, VoiceAsteria, VoiceOrion}
}
