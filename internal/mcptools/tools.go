// Package mcptools содержит обработчики MCP-инструментов справочника.
// Инструменты строго read-only: MCP-клиенты видят только публичные данные.
package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/aaronshaf/churches-sub000/internal/models"
	"github.com/aaronshaf/churches-sub000/internal/service"
)

// ListCountiesHandler возвращает обработчик инструмента "list-counties".
func ListCountiesHandler(churchService service.ChurchService) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if ctx.Err() != nil {
			return mcp.NewToolResultError(ctx.Err().Error()), nil
		}

		counties, err := churchService.Counties(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var sb strings.Builder
		sb.WriteString("# Counties\n\n")
		for _, county := range counties {
			sb.WriteString("- ")
			sb.WriteString(county.Name)
			sb.WriteString(" (path: ")
			sb.WriteString(county.Path)
			sb.WriteString(")")
			if county.Population != nil {
				fmt.Fprintf(&sb, ", population %d", *county.Population)
			}
			sb.WriteString("\n")
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// ListChurchesHandler возвращает обработчик инструмента "list-churches".
func ListChurchesHandler(churchService service.ChurchService) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if ctx.Err() != nil {
			return mcp.NewToolResultError(ctx.Err().Error()), nil
		}

		countyPath := req.GetString("county", "")
		status := models.ChurchStatus(req.GetString("status", ""))

		var churches []*models.Church
		var err error
		if status == "" {
			churches, err = churchService.ListPublic(ctx, countyPath)
		} else {
			if !status.Valid() {
				return mcp.NewToolResultError(fmt.Sprintf("unknown status %q", status)), nil
			}
			// Скрытые статусы недоступны и через MCP
			if !status.PubliclyVisible() {
				return mcp.NewToolResultError(fmt.Sprintf("status %q is not publicly visible", status)), nil
			}
			filter := models.ChurchFilter{PublicOnly: true, Statuses: []models.ChurchStatus{status}}
			if countyPath != "" {
				var county *models.County
				county, err = churchService.CountyByPath(ctx, countyPath)
				if err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}
				filter.CountyID = &county.ID
			}
			churches, err = churchService.ListAll(ctx, filter)
		}
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var sb strings.Builder
		sb.WriteString("# Churches\n\n")
		for _, church := range churches {
			sb.WriteString("- ")
			sb.WriteString(church.Name)
			if church.Path != nil {
				sb.WriteString(" (path: ")
				sb.WriteString(*church.Path)
				sb.WriteString(")")
			}
			if church.CountyName != nil {
				sb.WriteString(", ")
				sb.WriteString(*church.CountyName)
			}
			sb.WriteString("\n")
		}
		if len(churches) == 0 {
			sb.WriteString("No churches found.\n")
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// GetChurchHandler возвращает обработчик инструмента "get-church".
func GetChurchHandler(churchService service.ChurchService) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if ctx.Err() != nil {
			return mcp.NewToolResultError(ctx.Err().Error()), nil
		}

		path, err := req.RequireString("path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		church, err := churchService.GetByPath(ctx, path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		// Скрытые статусы недоступны и через MCP
		if !church.Status.PubliclyVisible() {
			return mcp.NewToolResultError(models.ErrChurchNotFound.Error()), nil
		}

		return mcp.NewToolResultText(formatChurch(church)), nil
	}
}

func formatChurch(church *models.Church) string {
	var sb strings.Builder
	sb.WriteString("# ")
	sb.WriteString(church.Name)
	sb.WriteString("\n\n")

	writeField := func(label string, value *string) {
		if value != nil && *value != "" {
			sb.WriteString(label)
			sb.WriteString(": ")
			sb.WriteString(*value)
			sb.WriteString("\n")
		}
	}

	writeField("County", church.CountyName)
	writeField("Address", church.GatheringAddress)
	writeField("Website", church.Website)
	writeField("Phone", church.Phone)
	writeField("Email", church.Email)
	if church.Language != "" {
		sb.WriteString("Language: ")
		sb.WriteString(church.Language)
		sb.WriteString("\n")
	}

	if len(church.Gatherings) > 0 {
		sb.WriteString("\n## Gatherings\n")
		for _, g := range church.Gatherings {
			sb.WriteString("- ")
			sb.WriteString(g.Time)
			if g.Notes != nil && *g.Notes != "" {
				sb.WriteString(" (")
				sb.WriteString(*g.Notes)
				sb.WriteString(")")
			}
			sb.WriteString("\n")
		}
	}
	if len(church.Affiliations) > 0 {
		sb.WriteString("\n## Affiliations\n")
		for _, a := range church.Affiliations {
			sb.WriteString("- ")
			sb.WriteString(a.Name)
			sb.WriteString("\n")
		}
	}
	writeField("\nNotes", church.PublicNotes)
	return sb.String()
}
