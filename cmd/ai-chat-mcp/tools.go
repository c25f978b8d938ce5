package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createRecommendServiceTool returns the recommend_service tool definition
func createRecommendServiceTool() mcp.Tool {
	return mcp.NewTool("recommend_service",
		mcp.WithDescription("Ask for a generative AI service recommendation. Runs web search, extracts sources and generates a cited answer within the given project conversation"),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("Project ID (format: prj_{uuid}) holding the conversation"),
		),
		mcp.WithString("prompt",
			mcp.Required(),
			mcp.Description("The user question, e.g. 'Which service is best for generating presentation slides?'"),
		),
	)
}

// createListProjectsTool returns the list_projects tool definition
func createListProjectsTool() mcp.Tool {
	return mcp.NewTool("list_projects",
		mcp.WithDescription("List conversation projects belonging to a user"),
		mcp.WithString("username",
			mcp.Required(),
			mcp.Description("Username whose projects to list"),
		),
	)
}

// createGetHistoryTool returns the get_history tool definition
func createGetHistoryTool() mcp.Tool {
	return mcp.NewTool("get_history",
		mcp.WithDescription("Retrieve the conversation history of a project, including cited source articles"),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("Project ID (format: prj_{uuid})"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum messages to return, newest last (default: 20)"),
		),
	)
}

// createGetArticleTool returns the get_article tool definition
func createGetArticleTool() mcp.Tool {
	return mcp.NewTool("get_article",
		mcp.WithDescription("Retrieve a stored source article by URL"),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("Canonical URL of the article"),
		),
	)
}
