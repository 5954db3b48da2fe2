// Command test_integration drives a running `plenum serve` instance: it
// imports a small dataset twice and checks the graph counts did not move.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"reflect"
	"time"
)

const (
	baseURL = "http://localhost:8080"
)

type stats struct {
	Nodes         map[string]int64 `json:"nodes"`
	Relationships map[string]int64 `json:"relationships"`
}

func main() {
	// Wait for server to start
	time.Sleep(2 * time.Second)

	fmt.Println("Starting Integration Test...")

	payload := map[string]interface{}{
		"partidos": []map[string]interface{}{
			{"sigla": "AAA", "id": 1, "nome": "Partido A", "uri": "http://x/partidos/1"},
		},
		"deputados": []map[string]interface{}{
			{"id": 10, "nome": "X", "siglaPartido": "AAA", "idLegislatura": 56},
		},
		"frentes": []map[string]interface{}{
			{"id": 20, "titulo": "Frente Y", "idLegislatura": 57},
		},
		"orgaos": []map[string]interface{}{
			{"sigla": "PLEN", "id": 180, "nome": "Plenário"},
		},
		"proposicoes": []map[string]interface{}{
			{"id": 99, "siglaTipo": "PL", "numero": 1, "ano": 2024, "uri": "http://x/99"},
		},
		"votacoes": []map[string]interface{}{
			{"id": "5-a", "siglaOrgao": "PLEN", "uriProposicaoObjeto": "http://x/99"},
			{"id": "5-b", "siglaOrgao": "PLEN", "uriProposicaoObjeto": "http://x/404"},
		},
	}

	fmt.Println("1. First import...")
	if _, ok := sendRequest("POST", "/import", payload); !ok {
		fmt.Println("FAILED: first import")
		os.Exit(1)
	}
	first, ok := fetchStats()
	if !ok {
		fmt.Println("FAILED: stats after first import")
		os.Exit(1)
	}
	fmt.Println("PASSED: first import")

	fmt.Println("2. Second import...")
	if _, ok := sendRequest("POST", "/import", payload); !ok {
		fmt.Println("FAILED: second import")
		os.Exit(1)
	}
	second, ok := fetchStats()
	if !ok {
		fmt.Println("FAILED: stats after second import")
		os.Exit(1)
	}

	if !reflect.DeepEqual(first, second) {
		fmt.Printf("FAILED: counts changed between runs\n  first:  %+v\n  second: %+v\n", first, second)
		os.Exit(1)
	}
	fmt.Println("PASSED: re-import left counts unchanged")
}

func fetchStats() (stats, bool) {
	var s stats
	body, ok := sendRequest("GET", "/stats", nil)
	if !ok {
		return s, false
	}
	if err := json.Unmarshal(body, &s); err != nil {
		fmt.Printf("Error decoding stats: %v\n", err)
		return s, false
	}
	return s, true
}

func sendRequest(method, endpoint string, payload interface{}) ([]byte, bool) {
	var body io.Reader
	if payload != nil {
		jsonBytes, _ := json.Marshal(payload)
		body = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, baseURL+endpoint, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return nil, false
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return nil, false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(respBody))
		return nil, false
	}

	fmt.Printf("Response: %s\n", string(respBody))
	return respBody, true
}
