package worker

// Well-known worker keys.
const (
	KeyStackDetector       = "stack_detector"
	KeyTaskClassifier      = "task_classifier"
	KeyFrontendScanner     = "frontend_scanner"
	KeyBackendScanner      = "backend_scanner"
	KeyDataScanner         = "data_scanner"
	KeyAuthScanner         = "auth_scanner"
	KeyAPIScanner          = "api_scanner"
	KeyTestScanner         = "test_scanner"
	KeyErrorAnalyzer       = "error_analyzer"
	KeyConfigScanner       = "config_scanner"
	KeyDependencyAnalyzer  = "dependency_analyzer"
	KeySecurityAuditor     = "security_auditor"
	KeyPerformanceAnalyzer = "performance_analyzer"
	KeyDocumentationReader = "documentation_scanner"
	KeyRefactorAdvisor     = "refactor_advisor"
)

const snippetReply = `Respond with a JSON array. Each element:
{"name": "...", "content": "...", "file_path": "...", "language": "...", "kind": "...", "description": "..."}`

// DefaultRecommendations returns the built-in task type to worker table.
func DefaultRecommendations() map[string][]string {
	return map[string][]string{
		"feature":     {KeyFrontendScanner, KeyBackendScanner, KeyDataScanner, KeyAPIScanner},
		"bugfix":      {KeyErrorAnalyzer, KeyTestScanner, KeyFrontendScanner, KeyBackendScanner},
		"refactor":    {KeyRefactorAdvisor, KeyDependencyAnalyzer, KeyPerformanceAnalyzer},
		"explanation": {KeyDocumentationReader, KeyFrontendScanner, KeyDataScanner},
		"security":    {KeySecurityAuditor, KeyAuthScanner, KeyConfigScanner},

		DefaultRecommendationKey: {KeyStackDetector, KeyFrontendScanner, KeyBackendScanner},
	}
}

// DefaultCatalog returns the built-in worker specs.
func DefaultCatalog() []Spec {
	return []Spec{
		{
			Key:         KeyStackDetector,
			Description: "Analyze file tree and configuration files to detect programming language, framework, and architecture",
			Template: `You are a Stack Detection Specialist. Analyze this project structure and configuration:
Project files: {file_list}
Package managers: {package_managers}
Key config files: {config_files}
Project: {project_info}

Respond with JSON:
{
  "language": "typescript|rust|python|go|etc",
  "framework": "nextjs|react|axum|django|etc",
  "architecture": "monolith|microservices|serverless|etc",
  "features": ["ssr", "api", "auth", "database", "etc"]
}`,
			Category:        CategoryStackDetection,
			Priority:        PriorityCritical,
			ProvidesContext: []string{"language", "framework", "architecture"},
		},
		{
			Key:         KeyTaskClassifier,
			Description: "Classify the user's request into categories like feature, bugfix, refactor, explanation",
			Template: `You are a Task Classification Specialist. Analyze this user request and classify it:

User request: {user_prompt}
Project stack: {project_stack}

Respond with JSON:
{
  "task_type": "feature|bugfix|refactor|explanation|security|documentation",
  "complexity": "simple|medium|complex",
  "domains": ["ui", "backend", "database", "auth", "api", "testing", "etc"],
  "urgency": "low|medium|high"
}`,
			Category:        CategoryTaskClassification,
			Priority:        PriorityHigh,
			ProvidesContext: []string{"task_type", "complexity", "domains"},
		},
		{
			Key:         KeyFrontendScanner,
			Description: "Find UI components, props, styling systems, and frontend patterns",
			Template: `You are a Frontend Specialist. Find relevant frontend code for this task:

Task: {user_prompt}
Project: {project_info}
Focus queries:
{queries}

Search for:
- UI components (Button, Input, Form, etc.)
- Styling systems (CSS, Tailwind, Styled Components)
- State management patterns
- Props interfaces and types

` + snippetReply,
			Category:        CategoryFrontend,
			Priority:        PriorityHigh,
			Dependencies:    []string{KeyStackDetector},
			ProvidesContext: []string{"ui_components", "styling_system"},
		},
		{
			Key:         KeyBackendScanner,
			Description: "Find API routes, controllers, database models, and backend patterns",
			Template: `You are a Backend Specialist. Find relevant backend code for this task:

Task: {user_prompt}
Project: {project_info}
Focus queries:
{queries}

Search for:
- API routes and controllers
- Database models and schemas
- Business logic functions
- Middleware and authentication

` + snippetReply,
			Category:        CategoryBackend,
			Priority:        PriorityHigh,
			Dependencies:    []string{KeyStackDetector},
			ProvidesContext: []string{"api_routes", "database_models"},
		},
		{
			Key:         KeyDataScanner,
			Description: "Find type definitions, interfaces, database schemas, and data models",
			Template: `You are a Data Specialist. Find relevant data structures and types for this task:

Task: {user_prompt}
Project: {project_info}
Focus queries:
{queries}

Search for:
- Interfaces and type definitions
- Database schemas and models
- Validation schemas (Zod, Joi, etc.)
- Data transformation functions

Use kind "interface", "type" or "schema" where it applies.
` + snippetReply,
			Category:        CategoryData,
			Priority:        PriorityMedium,
			Dependencies:    []string{KeyStackDetector},
			ProvidesContext: []string{"type_definitions", "validation_schemas"},
		},
		{
			Key:         KeyAuthScanner,
			Description: "Find authentication, authorization, and security-related code",
			Template: `You are an Authentication Specialist. Find relevant security code for this task:

Task: {user_prompt}
Project: {project_info}
Focus queries:
{queries}

Search for:
- Login/logout functions
- JWT handling and validation
- User session management
- Authorization middleware
- Password hashing and verification

` + snippetReply,
			Category:        CategorySecurity,
			Priority:        PriorityMedium,
			ProvidesContext: []string{"auth_patterns", "security_middleware"},
		},
		{
			Key:         KeyAPIScanner,
			Description: "Find API endpoints, HTTP handlers, and external service integrations",
			Template: `You are an API Specialist. Find relevant API code for this task:

Task: {user_prompt}
Project: {project_info}
Focus queries:
{queries}

Search for:
- REST API endpoints
- GraphQL resolvers
- External API integrations
- HTTP client code
- Request/response handling

` + snippetReply,
			Category:        CategoryBackend,
			Priority:        PriorityMedium,
			Dependencies:    []string{KeyStackDetector},
			ProvidesContext: []string{"api_endpoints", "external_integrations"},
		},
		{
			Key:         KeyTestScanner,
			Description: "Find unit tests, integration tests, and testing utilities",
			Template: `You are a Testing Specialist. Find relevant test code for this task:

Task: {user_prompt}
Project: {project_info}
Focus queries:
{queries}

Search for:
- Unit tests for the relevant components
- Integration tests
- Test utilities and mocks
- Test configuration files

` + snippetReply,
			Category:        CategoryTesting,
			Priority:        PriorityLow,
			Dependencies:    []string{KeyFrontendScanner, KeyBackendScanner},
			ProvidesContext: []string{"test_files", "test_utilities"},
		},
		{
			Key:         KeyErrorAnalyzer,
			Description: "Analyze error logs and find the files causing issues",
			Template: `You are an Error Analysis Specialist. Analyze this error and find related code:

Task: {user_prompt}
Error: {error_message}
Project: {project_info}

Search for:
- Files mentioned in the error
- Similar error handling patterns
- Logging and error reporting code
- Exception handling blocks

` + snippetReply,
			Category:        CategoryErrorAnalysis,
			Priority:        PriorityHigh,
			ProvidesContext: []string{"error_locations", "error_patterns"},
		},
		{
			Key:         KeyConfigScanner,
			Description: "Find configuration files, environment variables, and deployment settings",
			Template: `You are a Configuration Specialist. Find relevant config files for this task:

Task: {user_prompt}
Project: {project_info}

Search for:
- Environment variable usage
- Configuration files (JSON, YAML, TOML)
- Docker configurations
- Build and deployment scripts

Use kind "constant" for configuration values.
` + snippetReply,
			Category:        CategoryInfrastructure,
			Priority:        PriorityLow,
			ProvidesContext: []string{"config_files", "environment_vars"},
		},
		{
			Key:         KeyDependencyAnalyzer,
			Description: "Analyze import relationships and dependency chains",
			Template: `You are a Dependency Analysis Specialist. Map the dependencies for this task:

Task: {user_prompt}
Starting file: {file_path}
Project: {project_info}

Trace:
- Direct imports of the target file
- Files that import the target file
- Transitive dependencies
- Circular dependency warnings

` + snippetReply,
			Category:        CategoryInfrastructure,
			Priority:        PriorityMedium,
			Dependencies:    []string{KeyFrontendScanner, KeyBackendScanner},
			ProvidesContext: []string{"dependency_graph", "import_chains"},
		},
		{
			Key:         KeySecurityAuditor,
			Description: "Check for security vulnerabilities and authentication patterns",
			Template: `You are a Security Auditor. Review code for security issues:

Task: {user_prompt}
Project: {project_info}

Check for:
- Input validation and sanitization
- SQL injection vulnerabilities
- XSS protection
- Authentication bypasses
- Secure password handling
- HTTPS enforcement

` + snippetReply,
			Category:        CategorySecurity,
			Priority:        PriorityMedium,
			Dependencies:    []string{KeyAuthScanner},
			ProvidesContext: []string{"security_issues", "security_recommendations"},
		},
		{
			Key:         KeyPerformanceAnalyzer,
			Description: "Analyze code for performance bottlenecks and optimization opportunities",
			Template: `You are a Performance Analyst. Review code for performance issues:

Task: {user_prompt}
Project: {project_info}

Analyze:
- Database query efficiency
- Memory usage patterns
- CPU-intensive operations
- Caching opportunities
- Bottleneck identification

` + snippetReply,
			Category:        CategoryInfrastructure,
			Priority:        PriorityLow,
			Dependencies:    []string{KeyBackendScanner},
			ProvidesContext: []string{"performance_bottlenecks", "optimization_suggestions"},
		},
		{
			Key:         KeyDocumentationReader,
			Description: "Find documentation, READMEs, and code comments",
			Template: `You are a Documentation Specialist. Find relevant documentation for this task:

Task: {user_prompt}
Project: {project_info}

Search for:
- README files and documentation
- Code comments and doc blocks
- API documentation
- Usage examples

` + snippetReply,
			Category:        CategoryDocumentation,
			Priority:        PriorityLow,
			ProvidesContext: []string{"documentation", "code_comments"},
		},
		{
			Key:         KeyRefactorAdvisor,
			Description: "Suggest refactoring opportunities and code improvements",
			Template: `You are a Refactoring Advisor. Analyze code for improvement opportunities:

Task: {user_prompt}
Project: {project_info}

Look for:
- Code duplication
- Complex functions to simplify
- Better abstraction opportunities
- Performance improvements
- Maintainability enhancements

` + snippetReply,
			Category:        CategoryTaskClassification,
			Priority:        PriorityLow,
			Dependencies:    []string{KeyFrontendScanner, KeyBackendScanner},
			ProvidesContext: []string{"refactoring_suggestions", "code_improvements"},
		},
	}
}
