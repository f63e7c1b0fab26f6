package fetch

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	eutilsBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

	// NCBI allows 3 requests/second without an API key, 10 with one.
	eutilsRateLimit           = 334 * time.Millisecond
	eutilsRateLimitWithAPIKey = 100 * time.Millisecond
)

// EntrezClient talks to the NCBI E-utilities REST API. It implements both
// the Registry port (BioProject lookup) and the Literature port
// (GEO-linked PubMed lookup).
type EntrezClient struct {
	client      *http.Client
	baseURL     string
	apiKey      string
	tool        string
	lastRequest time.Time
}

// EntrezOption configures an EntrezClient.
type EntrezOption func(*EntrezClient)

// WithAPIKey sets an NCBI API key for higher rate limits.
func WithAPIKey(key string) EntrezOption {
	return func(c *EntrezClient) {
		c.apiKey = key
	}
}

// WithBaseURL overrides the E-utilities endpoint (used in tests to point
// the client at a local server).
func WithBaseURL(base string) EntrezOption {
	return func(c *EntrezClient) {
		c.baseURL = strings.TrimSuffix(base, "/")
	}
}

// NewEntrezClient creates a client with the given per-request timeout.
func NewEntrezClient(timeout time.Duration, opts ...EntrezOption) *EntrezClient {
	c := &EntrezClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: eutilsBase,
		tool:    "prjmeta",
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// eSearchResponse is the ESearch utility reply.
type eSearchResponse struct {
	XMLName xml.Name `xml:"eSearchResult"`
	Count   string   `xml:"Count"`
	IDList  struct {
		IDs []string `xml:"Id"`
	} `xml:"IdList"`
	ErrorList struct {
		PhraseNotFound []string `xml:"PhraseNotFound"`
	} `xml:"ErrorList,omitempty"`
}

// eSummaryResponse is the Item-based ESummary reply used by the gds and
// pubmed databases.
type eSummaryResponse struct {
	XMLName xml.Name `xml:"eSummaryResult"`
	DocSum  []docSum `xml:"DocSum"`
}

type docSum struct {
	ID    string    `xml:"Id"`
	Items []sumItem `xml:"Item"`
}

type sumItem struct {
	Name    string    `xml:"Name,attr"`
	Type    string    `xml:"Type,attr"`
	Content string    `xml:",chardata"`
	Items   []sumItem `xml:"Item,omitempty"`
}

func (d *docSum) item(name string) string {
	for _, it := range d.Items {
		if it.Name == name {
			return strings.TrimSpace(it.Content)
		}
	}

	return ""
}

// bioProjectSummary is the DocumentSummary-based ESummary reply of the
// bioproject database, which does not use the Item list shape.
type bioProjectSummary struct {
	XMLName xml.Name `xml:"eSummaryResult"`
	Set     struct {
		Summaries []struct {
			ProjectAcc       string `xml:"Project_Acc"`
			ProjectTitle     string `xml:"Project_Title"`
			ProjectDescr     string `xml:"Project_Description"`
			ProjectDataType  string `xml:"Project_Data_Type"`
			TargetScope      string `xml:"Project_Target_Scope"`
			MethodType       string `xml:"Project_MethodType"`
			RegistrationDate string `xml:"Registration_Date"`
			OrganismName     string `xml:"Organism_Name"`
		} `xml:"DocumentSummary"`
	} `xml:"DocumentSummarySet"`
}

// eLinkResponse is the ELink utility reply.
type eLinkResponse struct {
	XMLName xml.Name `xml:"eLinkResult"`
	LinkSet []struct {
		LinkSetDB []struct {
			DBTo string `xml:"DbTo"`
			IDs  []struct {
				ID string `xml:"Id"`
			} `xml:"Link"`
		} `xml:"LinkSetDb"`
	} `xml:"LinkSet"`
}

// Project looks up the BioProject record for an accession and resolves the
// associated GEO series accession when one is linked.
func (c *EntrezClient) Project(ctx context.Context, id string) (*ProjectFields, error) {
	uid, err := c.search(ctx, "bioproject", fmt.Sprintf("%s[Accession]", id))
	if err != nil {
		return nil, fmt.Errorf("failed to find BioProject record: %w", err)
	}

	content, err := c.get(ctx, "esummary.fcgi", url.Values{
		"db": {"bioproject"},
		"id": {uid},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get BioProject summary: %w", err)
	}

	var summary bioProjectSummary
	if err := xml.Unmarshal(content, &summary); err != nil {
		return nil, fmt.Errorf("failed to parse BioProject summary: %w", err)
	}

	if len(summary.Set.Summaries) == 0 {
		return nil, fmt.Errorf("no summary found for %s", id)
	}

	s := summary.Set.Summaries[0]

	fields := &ProjectFields{
		Accession:    s.ProjectAcc,
		Title:        s.ProjectTitle,
		Description:  s.ProjectDescr,
		OrganismName: s.OrganismName,
		DataType:     s.ProjectDataType,
		TargetScope:  s.TargetScope,
		MethodType:   s.MethodType,
		Registration: s.RegistrationDate,
	}

	if fields.Accession == "" {
		fields.Accession = id
	}

	// A linked GEO series is the bridge to the literature lookup. Its
	// absence is not an error; many projects have no GEO entry.
	if geo, err := c.linkedGEOAccession(ctx, uid); err == nil {
		fields.GEOAccession = geo
	}

	return fields, nil
}

// linkedGEOAccession resolves the GEO series accession (GSE…) linked to a
// BioProject UID.
func (c *EntrezClient) linkedGEOAccession(ctx context.Context, uid string) (string, error) {
	ids, err := c.link(ctx, "bioproject", "gds", uid)
	if err != nil {
		return "", err
	}

	if len(ids) == 0 {
		return "", fmt.Errorf("no linked GEO records")
	}

	content, err := c.get(ctx, "esummary.fcgi", url.Values{
		"db": {"gds"},
		"id": {strings.Join(ids, ",")},
	})
	if err != nil {
		return "", err
	}

	var summary eSummaryResponse
	if err := xml.Unmarshal(content, &summary); err != nil {
		return "", fmt.Errorf("failed to parse gds summary: %w", err)
	}

	for _, doc := range summary.DocSum {
		acc := doc.item("Accession")
		if strings.HasPrefix(acc, "GSE") {
			return acc, nil
		}
	}

	return "", fmt.Errorf("no GSE accession among linked records")
}

// Publications returns the PubMed records linked to a GEO accession.
func (c *EntrezClient) Publications(ctx context.Context, geoAccession string) ([]Publication, error) {
	if geoAccession == "" {
		return nil, nil
	}

	uid, err := c.search(ctx, "gds", fmt.Sprintf("%s[Accession]", geoAccession))
	if err != nil {
		return nil, fmt.Errorf("failed to find GEO record: %w", err)
	}

	pmids, err := c.link(ctx, "gds", "pubmed", uid)
	if err != nil {
		return nil, fmt.Errorf("failed to link PubMed records: %w", err)
	}

	if len(pmids) == 0 {
		return nil, nil
	}

	content, err := c.get(ctx, "esummary.fcgi", url.Values{
		"db": {"pubmed"},
		"id": {strings.Join(pmids, ",")},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get PubMed summaries: %w", err)
	}

	var summary eSummaryResponse
	if err := xml.Unmarshal(content, &summary); err != nil {
		return nil, fmt.Errorf("failed to parse PubMed summaries: %w", err)
	}

	pubs := make([]Publication, 0, len(summary.DocSum))

	for _, doc := range summary.DocSum {
		pub := Publication{
			PMID:    doc.ID,
			Title:   doc.item("Title"),
			Journal: doc.item("FullJournalName"),
			Date:    doc.item("PubDate"),
			DOI:     doc.item("DOI"),
		}

		if pub.Journal == "" {
			pub.Journal = doc.item("Source")
		}

		if pub.DOI == "" {
			pub.DOI = articleID(doc, "doi")
		}

		pubs = append(pubs, pub)
	}

	return pubs, nil
}

// articleID digs a typed identifier out of the nested ArticleIds item.
func articleID(doc docSum, idType string) string {
	for _, it := range doc.Items {
		if it.Name != "ArticleIds" {
			continue
		}

		for _, sub := range it.Items {
			if strings.EqualFold(sub.Name, idType) {
				return strings.TrimSpace(sub.Content)
			}
		}
	}

	return ""
}

// search runs an ESearch query and returns the first UID.
func (c *EntrezClient) search(ctx context.Context, db, term string) (string, error) {
	content, err := c.get(ctx, "esearch.fcgi", url.Values{
		"db":     {db},
		"term":   {term},
		"retmax": {"1"},
	})
	if err != nil {
		return "", err
	}

	var response eSearchResponse
	if err := xml.Unmarshal(content, &response); err != nil {
		return "", fmt.Errorf("failed to parse search response: %w", err)
	}

	if len(response.ErrorList.PhraseNotFound) > 0 {
		return "", fmt.Errorf("phrase not found: %v", response.ErrorList.PhraseNotFound)
	}

	if len(response.IDList.IDs) == 0 {
		return "", fmt.Errorf("no records found for %s in %s", term, db)
	}

	return response.IDList.IDs[0], nil
}

// link runs an ELink query and returns the linked UIDs in the target db.
func (c *EntrezClient) link(ctx context.Context, from, to, uid string) ([]string, error) {
	content, err := c.get(ctx, "elink.fcgi", url.Values{
		"dbfrom": {from},
		"db":     {to},
		"id":     {uid},
	})
	if err != nil {
		return nil, err
	}

	var response eLinkResponse
	if err := xml.Unmarshal(content, &response); err != nil {
		return nil, fmt.Errorf("failed to parse link response: %w", err)
	}

	var ids []string

	for _, set := range response.LinkSet {
		for _, db := range set.LinkSetDB {
			if db.DBTo != to {
				continue
			}

			for _, link := range db.IDs {
				ids = append(ids, link.ID)
			}
		}
	}

	return ids, nil
}

// get performs one rate-limited E-utilities request.
func (c *EntrezClient) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	params.Set("tool", c.tool)
	params.Set("email", "prjmeta@example.com")

	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}

	c.rateLimit()

	requestURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, http.NoBody)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("E-utilities rate limit exceeded (HTTP 429); set NCBI_API_KEY for higher limits")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("E-utilities request failed with status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func (c *EntrezClient) rateLimit() {
	limit := eutilsRateLimit
	if c.apiKey != "" {
		limit = eutilsRateLimitWithAPIKey
	}

	if elapsed := time.Since(c.lastRequest); elapsed < limit {
		time.Sleep(limit - elapsed)
	}

	c.lastRequest = time.Now()
}
