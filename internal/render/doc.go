// Package render turns graphs and evaluation results into text: Mermaid
// flowcharts for graphs, and text, JSON or YAML for results.
package render
