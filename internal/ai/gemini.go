// Package ai encapsule l'appel à Gemini pour les réponses automatiques
// du support client.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-2.0-flash"

	// FallbackReply est renvoyée quand Gemini est indisponible : le client
	// reçoit toujours un accusé de réception.
	FallbackReply = "Merci pour votre demande. Notre équipe vous répondra dans les plus brefs délais."
)

var categoryLabels = map[string]string{
	"order":    "commande",
	"shipping": "livraison",
	"product":  "produit",
	"payment":  "paiement / remboursement",
	"account":  "compte client",
	"other":    "autre",
}

// GeminiClient appelle l'API generateContent en HTTP natif.
type GeminiClient struct {
	APIKey  string
	BaseURL string
	Model   string
	HTTP    *http.Client
}

func NewGeminiClient() *GeminiClient {
	return &GeminiClient{
		APIKey:  os.Getenv("GEMINI_API_KEY"),
		BaseURL: defaultBaseURL,
		Model:   defaultModel,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// AutoReply génère une réponse de support pour une demande client.
// En cas d'échec (clé absente, réseau, quota) elle retourne FallbackReply
// et jamais d'erreur : la création de la demande ne doit pas échouer à
// cause de Gemini.
func (c *GeminiClient) AutoReply(ctx context.Context, category, title, body string) string {
	reply, err := c.generate(ctx, buildPrompt(category, title, body))
	if err != nil {
		log.Printf("⚠️ Réponse automatique Gemini indisponible: %v", err)
		return FallbackReply
	}
	return reply
}

func buildPrompt(category, title, body string) string {
	label, ok := categoryLabels[category]
	if !ok {
		label = categoryLabels["other"]
	}

	return fmt.Sprintf(`Catégorie de la demande : %s
Titre : %s
Contenu : %s

Tu es un agent du service client d'une librairie en ligne.
Rédige une réponse chaleureuse et professionnelle en français, en 200
caractères maximum.`, label, title, body)
}

func (c *GeminiClient) generate(ctx context.Context, prompt string) (string, error) {
	if c.APIKey == "" {
		return "", fmt.Errorf("clé API Gemini non configurée")
	}

	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.BaseURL, c.Model, c.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini: statut %d", resp.StatusCode)
	}

	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini: réponse vide")
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
