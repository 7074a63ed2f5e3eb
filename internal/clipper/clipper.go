package clipper

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"ciboway/internal/ghost"
	"ciboway/internal/llm"
	"ciboway/internal/recipe"
	"ciboway/internal/shopping"

	"github.com/PuerkitoBio/goquery"
)

// maxContentLength caps the page text handed to the extractor.
const maxContentLength = 20000

// Clipper handles fetching and extracting recipes from URLs.
type Clipper struct {
	ghostClient ghost.Client
	extractor   *recipe.Extractor
	httpClient  *http.Client
}

// ClipResult is the outcome of clipping one page.
type ClipResult struct {
	Post   *ghost.Post
	Recipe recipe.Recipe
	Meta   llm.AgentMeta
}

// NewClipper creates a new Clipper instance.
func NewClipper(ghostClient ghost.Client, extractor *recipe.Extractor) *Clipper {
	return &Clipper{
		ghostClient: ghostClient,
		extractor:   extractor,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

// ClipURL fetches the URL, extracts the recipe and publishes it to Ghost
// tagged as a recipe, so the next ingestion picks it up.
func (c *Clipper) ClipURL(ctx context.Context, url string) (*ClipResult, error) {
	title, content, err := c.fetchAndCleanHTML(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content: %w", err)
	}

	res, err := c.extractor.ExtractRecipe(ctx, recipe.PostData{
		ID:    url,
		Title: title,
		HTML:  content,
	})
	if err != nil {
		return nil, fmt.Errorf("ai extraction failed: %w", err)
	}
	if len(res.Recipe.Ingredients) == 0 {
		return nil, fmt.Errorf("no ingredients found at %s", url)
	}

	post, err := c.ghostClient.CreatePost(ctx, res.Recipe.Name, formatToHTML(res.Recipe, url), true)
	if err != nil {
		return nil, fmt.Errorf("failed to save to ghost: %w", err)
	}

	rec := res.Recipe
	rec.ID = post.ID
	rec.UpdatedAt = post.UpdatedAt
	return &ClipResult{Post: post, Recipe: rec, Meta: res.Meta}, nil
}

func (c *Clipper) fetchAndCleanHTML(ctx context.Context, url string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "ciboway-clipper/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", "", err
	}

	// Remove noise to save LLM tokens
	doc.Find("script, style, nav, footer, iframe, noscript, svg, form, .ads, #ads, [class*='comment']").Remove()

	title := strings.TrimSpace(doc.Find("h1").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	text := strings.Join(strings.Fields(doc.Find("body").Text()), " ")
	if len(text) > maxContentLength {
		text = text[:maxContentLength]
	}
	return title, text, nil
}

func formatToHTML(r recipe.Recipe, sourceURL string) string {
	src := html.EscapeString(sourceURL)

	var sb strings.Builder
	fmt.Fprintf(&sb, "<p><i>Imported from: <a href=\"%s\">%s</a></i></p>", src, src)

	sb.WriteString("<h2>Ingredients</h2><ul>")
	for _, ing := range r.Ingredients {
		line := strings.TrimSpace(strings.Join([]string{ing.Quantity, ing.Unit, ing.Name}, " "))
		line = strings.Join(strings.Fields(line), " ")
		fmt.Fprintf(&sb, "<li>%s <em>(%s)</em></li>", html.EscapeString(line), ing.Category.Label())
	}
	sb.WriteString("</ul>")

	sb.WriteString("<h2>Instructions</h2><ol>")
	for _, step := range r.Instructions {
		fmt.Fprintf(&sb, "<li>%s</li>", html.EscapeString(step))
	}
	sb.WriteString("</ol>")

	sb.WriteString("<hr>")
	fmt.Fprintf(&sb, "<p><strong>Prep Time:</strong> %d min | <strong>Cook Time:</strong> %d min | <strong>Servings:</strong> %d</p>",
		r.PrepTime, r.CookTime, r.Servings)

	return sb.String()
}

// Summary renders a short plain text description of a clipped recipe,
// quantities scaled the way the grocery list shows them.
func Summary(r recipe.Recipe) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (serves %d)\n", r.Name, r.Servings)
	for _, ing := range r.Ingredients {
		fmt.Fprintf(&sb, "• %s\n", shopping.Describe(shopping.GroceryItem{
			Name:     ing.Name,
			Unit:     ing.Unit,
			Quantity: shopping.ParseQuantity(ing.Quantity),
		}))
	}
	return strings.TrimRight(sb.String(), "\n")
}
