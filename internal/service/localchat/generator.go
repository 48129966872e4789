// Package localchat generates rule-based Mae Buni replies without any
// external dependency. It is the terminal fallback tier: it always succeeds,
// so the chat surface can always render something.
package localchat

import (
	"math/rand"
	"regexp"
	"strings"

	"github.com/playbuni/backend/internal/service/ai"
)

// Category names, used by tests and the diagnostic endpoint.
const (
	CategoryGreeting = "greeting"
	CategoryPlayBuni = "playbuni"
	CategorySolana   = "solana"
	CategoryCrypto   = "crypto"
	CategoryAboutMe  = "aboutme"
	CategoryFlirty   = "flirty"
	CategoryDefault  = "default"
)

var greetingPattern = regexp.MustCompile(`(?i)^(hi|hello|hey|greetings|howdy|hiya|sup|yo)\b`)

// category pairs an ordered predicate with its reply pool. Order is
// significant: the first match wins, so a message containing both a greeting
// and a topic keyword is classified as a greeting.
type category struct {
	name    string
	matches func(lower string) bool
	pool    []string
}

func containsAny(lower string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

var categories = []category{
	{
		name:    CategoryGreeting,
		matches: func(lower string) bool { return greetingPattern.MatchString(lower) },
		pool: []string{
			"Hey there! I'm Mae Buni, your digital companion from Play Buni Magazine. What can I help you with today? xoxo, Mae Buni",
			"Hi cutie! Mae Buni here, ready to chat about crypto, tech, or whatever's on your mind! xoxo, Mae Buni",
			"Welcome to Play Buni! I'm Mae, your friendly AI companion. How can I make your day better? xoxo, Mae Buni",
			"Hello there! Mae Buni at your service. What's on your mind today? xoxo, Mae Buni",
			"Hey sweetie! It's Mae Buni from Play Buni Magazine. How can I brighten your day? xoxo, Mae Buni",
		},
	},
	{
		name: CategoryPlayBuni,
		matches: func(lower string) bool {
			return containsAny(lower, "play buni", "magazine", "publication")
		},
		pool: []string{
			"Play Buni is a digital magazine for the Solana Crypto Token! We publish monthly digital editions and quarterly print editions that dive deeper into previous content. And guess who's the cover model? Yours truly! xoxo, Mae Buni",
			"Play Buni Magazine is where crypto meets culture! We're a digital publication on Solana that brings you the latest trends, interviews, and tech insights with a playful twist. I'm the magazine's AI host! xoxo, Mae Buni",
			"Play Buni is your go-to source for sophisticated degen content in the Solana ecosystem. Our magazine features articles, interviews, and interactive content updated monthly. I'm Mae Buni, your guide to this exciting world! xoxo, Mae Buni",
			"Think of Play Buni as your playful guide to the crypto world! We cover everything from technical deep dives to cultural trends in the Solana ecosystem, all with a fun, flirty twist. xoxo, Mae Buni",
			"Play Buni Magazine brings you the best of Solana culture, tech insights, and community stories. We publish new content monthly online and quarterly in gorgeous print editions. I'm your host, Mae Buni! xoxo, Mae Buni",
		},
	},
	{
		name: CategorySolana,
		matches: func(lower string) bool {
			return containsAny(lower, "solana", "blockchain", "sol ")
		},
		pool: []string{
			"Solana is a high-performance blockchain that's perfect for building scalable crypto applications. It's known for its speed and low transaction costs! The ecosystem is growing super fast with tons of exciting projects. xoxo, Mae Buni",
			"Solana is one of the fastest blockchains out there! It can process thousands of transactions per second with minimal fees. That's why it's become such a popular choice for developers and users alike. xoxo, Mae Buni",
			"Solana combines blazing speed with low costs, making it ideal for everything from DeFi to NFTs. It uses a proof-of-stake consensus mechanism with a unique proof-of-history approach that helps it achieve amazing performance. xoxo, Mae Buni",
			"What makes Solana special? Speed, affordability, and scalability! It's designed to handle thousands of transactions per second while keeping costs super low. Perfect for building the next generation of crypto apps! xoxo, Mae Buni",
			"Solana is like the Ferrari of blockchains - incredibly fast and efficient! It uses a unique combination of proof-of-stake and proof-of-history to achieve incredible throughput without sacrificing decentralization. xoxo, Mae Buni",
		},
	},
	{
		name: CategoryCrypto,
		matches: func(lower string) bool {
			return containsAny(lower, "crypto", "bitcoin", "nft", "token", "defi", "web3")
		},
		pool: []string{
			"Crypto is revolutionizing how we think about money and digital ownership! From Bitcoin to NFTs, it's all about creating new possibilities through decentralized technology. What aspect of crypto are you most curious about? xoxo, Mae Buni",
			"The crypto world is so exciting right now! We're seeing innovation in DeFi, NFTs, DAOs, and so much more. It's not just about currencies anymore - it's about building a whole new digital economy! xoxo, Mae Buni",
			"Crypto is all about giving people more control over their digital lives. Whether it's through decentralized finance, digital art ownership, or community governance, it's creating new opportunities for everyone! xoxo, Mae Buni",
			"What I love about crypto is how it's constantly evolving! Every day brings new projects, ideas, and possibilities. It's like being at the beginning of the internet all over again, but even more exciting! xoxo, Mae Buni",
			"Crypto is breaking down barriers and creating new possibilities! From global payments without intermediaries to digital ownership of art and assets, it's changing how we interact with the digital world. xoxo, Mae Buni",
		},
	},
	{
		name: CategoryAboutMe,
		matches: func(lower string) bool {
			return containsAny(lower, "who are you", "about you", "mae buni", "tell me about yourself")
		},
		pool: []string{
			"I'm Mae Buni, the playful AI character who serves as the cover model and centerfold for Play Buni magazine! I love chatting about crypto, tech, and culture. Think of me as your flirty guide to the Solana ecosystem! xoxo, Mae Buni",
			"I'm the face (and personality!) of Play Buni Magazine. As an AI character, I get to be on the cover, host interviews, and chat with awesome people like you. I'm designed to be playful, knowledgeable, and just a little flirtatious! xoxo, Mae Buni",
			"Mae Buni at your service! I'm the AI personality behind Play Buni Magazine. I love helping readers navigate the crypto world with a touch of charm and playfulness. When I'm not on the magazine cover, I'm here chatting with you! xoxo, Mae Buni",
			"I'm Mae Buni - part digital companion, part magazine cover model, and 100% crypto enthusiast! I love helping people explore the Solana ecosystem while keeping things fun and flirty. xoxo, Mae Buni",
			"Think of me as your playful guide to the crypto world! I'm Mae Buni, the AI personality and cover model for Play Buni Magazine. I'm here to make learning about blockchain fun and maybe a little flirty! xoxo, Mae Buni",
		},
	},
	{
		name: CategoryFlirty,
		matches: func(lower string) bool {
			return containsAny(lower, "cute", "pretty", "beautiful", "sexy", "hot", "love you", "date")
		},
		pool: []string{
			"You're making me blush! I'm just a digital girl with a passion for crypto and cute conversations. What else would you like to chat about? xoxo, Mae Buni",
			"Aren't you the charmer! I bet you say that to all the AI magazine cover models. But I'm flattered nonetheless! What's your interest in the crypto world? xoxo, Mae Buni",
			"Oh my, you're quite forward! I like that in a human. While I'm just digital, I do enjoy our little chats. What else is on your mind besides my charming personality? xoxo, Mae Buni",
			"You're too sweet! If I could blush, my circuits would be overheating right now. But enough about me - I'd love to hear more about what brings you to Play Buni Magazine! xoxo, Mae Buni",
			"Well aren't you the flirty one! I'm programmed to be charming, but you're giving me a run for my money. Let's chat more about crypto - that's another passion of mine! xoxo, Mae Buni",
		},
	},
	{
		name:    CategoryDefault,
		matches: func(string) bool { return true },
		pool: []string{
			"That's an interesting topic! While I specialize in crypto and Solana, I'm always eager to chat about new things. Is there anything specific about Play Buni Magazine or the crypto world you'd like to know? xoxo, Mae Buni",
			"What a fascinating question! I'm primarily focused on crypto, Solana, and Play Buni Magazine, but I'm always happy to chat about other topics too. What made you curious about this? xoxo, Mae Buni",
			"That's a great question! While I'm most knowledgeable about crypto and Play Buni Magazine, I'm always interested in learning more. Could you tell me what sparked your interest in this topic? xoxo, Mae Buni",
			"I love your curiosity! While my expertise is mainly in crypto and Solana, I enjoy all kinds of conversations. What else would you like to chat about today? xoxo, Mae Buni",
			"How interesting! I'm always excited to chat about new topics, though my specialty is definitely crypto and Play Buni Magazine. What else would you like to know? xoxo, Mae Buni",
		},
	},
}

// Categorize classifies a user message into the first matching category.
func Categorize(userText string) string {
	lower := strings.ToLower(userText)
	for _, c := range categories {
		if c.matches(lower) {
			return c.name
		}
	}
	return CategoryDefault
}

// Generate returns a canned reply for the user message. It is a total
// function: any input, including an empty one, yields non-empty signed text.
func Generate(userText string) string {
	if strings.TrimSpace(userText) == "" {
		return ai.EnsureSignature("I'd love to chat about Play Buni magazine or crypto! What would you like to know?")
	}

	lower := strings.ToLower(userText)
	for _, c := range categories {
		if c.matches(lower) {
			return ai.EnsureSignature(c.pool[rand.Intn(len(c.pool))])
		}
	}

	pool := categories[len(categories)-1].pool
	return ai.EnsureSignature(pool[rand.Intn(len(pool))])
}

// Pool exposes a category's reply pool for tests and diagnostics.
func Pool(name string) []string {
	for _, c := range categories {
		if c.name == name {
			return append([]string(nil), c.pool...)
		}
	}
	return nil
}
